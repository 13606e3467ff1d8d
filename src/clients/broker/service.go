package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"roundup/src/config"
	"roundup/src/utils"
	"roundup/src/utils/requests"
)

type BrokerServiceClientI interface {
	PlaceOrder(ctx context.Context, order *OrderRequest) (*OrderResponse, error)
}

type BrokerServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

// NewClient creates a new instance of BrokerServiceClient
func NewClient(cfg *config.Config) (*BrokerServiceClient, error) {
	api := requests.NewExternalAPIService()
	return &BrokerServiceClient{
		API:     api,
		BaseURL: cfg.ExternalClients.Broker.BaseURL,
		APIKey:  cfg.ExternalClients.Broker.APIKey,
	}, nil
}

// PlaceOrder submits a notional buy order to the brokerage.
// Network failures and broker 5xx responses come back as transient errors,
// rejections come back as permanent ones.
func (c *BrokerServiceClient) PlaceOrder(ctx context.Context, order *OrderRequest) (*OrderResponse, error) {
	endpoint := fmt.Sprintf("%s/v1/orders", c.BaseURL)

	resp, err := c.API.Post(ctx, endpoint, c.APIKey, nil, order)
	if err != nil {
		return nil, utils.Transient(err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.Transient(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, utils.Transient(fmt.Errorf("broker returned %s", resp.Status))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var errResponse ErrorResponse
		if json.Unmarshal(responseBody, &errResponse) == nil && errResponse.Message != "" {
			return nil, fmt.Errorf("broker rejected order: %s", errResponse.Message)
		}
		return nil, fmt.Errorf("broker rejected order: %s", resp.Status)
	}

	var orderResponse OrderResponse
	err = json.Unmarshal(responseBody, &orderResponse)
	if err != nil {
		return nil, err
	}

	return &orderResponse, nil
}
