package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/storesync/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// maxResponseSize limits CRM response bodies to 1MB
const maxResponseSize = 1 << 20

// Client talks GraphQL to the CRM order API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a CRM client with the given configuration
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// CreateOrder creates the order in the CRM and returns the CRM-assigned ID
func (c *Client) CreateOrder(ctx context.Context, draft integration.OrderDraft) (string, error) {
	items := make([]cartItem, 0, len(draft.Items))
	for _, it := range draft.Items {
		items = append(items, cartItem{
			ItemID:    it.ItemID,
			Quantity:  it.Quantity,
			Variation: 1,
			Price:     it.PriceMinor,
		})
	}

	variables := map[string]any{
		"input": map[string]any{
			"statusId":  c.config.StatusID,
			"projectId": c.config.ProjectID,
			"orderData": map[string]any{
				"humanNameFields": []humanNameField{{
					Field: "name",
					Value: humanNameValue{FirstName: draft.FirstName, LastName: draft.LastName},
				}},
				"phoneFields": []stringField{{Field: "phone", Value: draft.Phone}},
				"emailFields": []stringField{{Field: "email", Value: draft.Email}},
				"cartData":    map[string]any{"items": items},
			},
		},
	}

	var resp addOrderResponse
	if err := c.doRequest(ctx, addOrderMutation, variables, &resp); err != nil {
		return "", err
	}
	if len(resp.Errors) > 0 {
		return "", fmt.Errorf("%w: %s", integration.ErrCrmRejected, resp.Errors[0].Message)
	}

	id := resp.Data.OrderMutation.AddOrder.ID.String()
	if id == "" {
		return "", fmt.Errorf("%w: response missing order ID", integration.ErrCrmRejected)
	}

	c.logger.Debug("crm order created", zap.String("crm_order_id", id))
	return id, nil
}

// UpdateStatus pushes a status change for an existing CRM order
func (c *Client) UpdateStatus(ctx context.Context, externalID, externalStatus string) error {
	variables := map[string]any{
		"input": map[string]any{
			"id":     externalID,
			"status": externalStatus,
		},
	}

	var resp updateStatusResponse
	if err := c.doRequest(ctx, updateStatusMutation, variables, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("%w: %s", integration.ErrCrmRejected, resp.Errors[0].Message)
	}

	c.logger.Debug("crm status updated",
		zap.String("crm_order_id", externalID),
		zap.String("status", externalStatus),
	)
	return nil
}

// doRequest executes a GraphQL request and decodes the response envelope
func (c *Client) doRequest(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrCrmUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", integration.ErrCrmUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return integration.ErrCrmAuthFailed
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", integration.ErrCrmUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", integration.ErrCrmUnavailable, err)
	}
	return nil
}

// Ensure Client implements integration.CrmClient
var _ integration.CrmClient = (*Client)(nil)
