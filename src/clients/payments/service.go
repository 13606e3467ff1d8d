package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"roundup/src/config"
	"roundup/src/utils"
	aws_handler "roundup/src/utils/aws"
	"roundup/src/utils/requests"
)

type PaymentsServiceClientI interface {
	Charge(ctx context.Context, charge *ChargeRequest) (*ChargeResponse, error)
}

type PaymentsServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

// NewClient creates a new instance of PaymentsServiceClient. When the config
// names a secret, the gateway API key is fetched from AWS Secrets Manager,
// otherwise the plain config value is used.
func NewClient(cfg *config.Config, awsHandler *aws_handler.AWSHandler) (*PaymentsServiceClient, error) {
	apiKey := cfg.ExternalClients.Payments.APIKey
	if secretID := cfg.ExternalClients.Payments.APIKeySecret; secretID != "" {
		if awsHandler == nil {
			return nil, fmt.Errorf("payments apiKeySecret is set but no AWS handler is configured")
		}
		secret, err := awsHandler.SecretManager.GetSecretValue(secretID)
		if err != nil {
			return nil, fmt.Errorf("failed to read payments API key secret: %w", err)
		}
		apiKey = secret
	}

	api := requests.NewExternalAPIService()
	return &PaymentsServiceClient{
		API:     api,
		BaseURL: cfg.ExternalClients.Payments.BaseURL,
		APIKey:  apiKey,
	}, nil
}

// Charge asks the payment gateway to collect a subscription renewal.
// A declined card is a regular response, not an error. Network failures and
// gateway 5xx responses come back as transient errors.
func (c *PaymentsServiceClient) Charge(ctx context.Context, charge *ChargeRequest) (*ChargeResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/charges", c.BaseURL)

	resp, err := c.API.Post(ctx, endpoint, c.APIKey, nil, charge)
	if err != nil {
		return nil, utils.Transient(err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.Transient(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, utils.Transient(fmt.Errorf("payment gateway returned %s", resp.Status))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var errResponse ErrorResponse
		if json.Unmarshal(responseBody, &errResponse) == nil && errResponse.Message != "" {
			return nil, fmt.Errorf("payment gateway rejected charge: %s", errResponse.Message)
		}
		return nil, fmt.Errorf("payment gateway rejected charge: %s", resp.Status)
	}

	var chargeResponse ChargeResponse
	err = json.Unmarshal(responseBody, &chargeResponse)
	if err != nil {
		return nil, err
	}

	return &chargeResponse, nil
}
