package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Roundups        RoundupsConfig       `mapstructure:"roundups"`
	Queue           QueueConfig          `mapstructure:"queue"`
	Renewals        RenewalsConfig       `mapstructure:"renewals"`
	Jobs            JobsConfig           `mapstructure:"jobs"`
	Logging         LoggingConfig        `mapstructure:"logging"`
	AWS             AWSConfig            `mapstructure:"aws"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type ServiceType `mapstructure:"type"`
	Port string      `mapstructure:"port"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	// MaxConnections caps the pgx pool. The API and the worker share this
	// setting, batch jobs hold connections for the whole run.
	MaxConnections int `mapstructure:"maxConnections"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type ExternalClientConfig struct {
	Broker   BrokerConfig   `mapstructure:"broker"`
	Payments PaymentsConfig `mapstructure:"payments"`
}

type BrokerConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
}

type PaymentsConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
	// APIKeySecret names an AWS Secrets Manager secret holding the key.
	// When set it takes precedence over APIKey.
	APIKeySecret string `mapstructure:"apiKeySecret"`
}

type RoundupsConfig struct {
	Multiplier int       `mapstructure:"multiplier"`
	Fees       FeeConfig `mapstructure:"fees"`
}

// FeeConfig amounts are decimal strings so yaml floats never leak
// binary rounding into money math.
type FeeConfig struct {
	Mode        string `mapstructure:"mode"`
	FlatAmount  string `mapstructure:"flatAmount"`
	PercentRate string `mapstructure:"percentRate"`
}

const (
	FeeModeFlat    = "flat"
	FeeModePercent = "percent"
)

type QueueConfig struct {
	StuckAfterMinutes int `mapstructure:"stuckAfterMinutes"`
	MaxOrderRetries   int `mapstructure:"maxOrderRetries"`
}

type RenewalsConfig struct {
	MaxAttempts      int `mapstructure:"maxAttempts"`
	MaxChargeRetries int `mapstructure:"maxChargeRetries"`
}

type JobsConfig struct {
	SettleCron    string `mapstructure:"settleCron"`
	RenewalsCron  string `mapstructure:"renewalsCron"`
	ReconcileCron string `mapstructure:"reconcileCron"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config

	viper.AddConfigPath(path)
	viper.SetConfigName("appsettings")
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
