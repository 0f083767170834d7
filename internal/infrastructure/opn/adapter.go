package opn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/storesync/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// maxResponseSize limits gateway response bodies to 1MB
const maxResponseSize = 1 << 20

// Adapter implements the payment.Gateway port against the OPN REST API
type Adapter struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAdapter creates a gateway adapter with the given configuration
func NewAdapter(cfg Config, logger *zap.Logger) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Adapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// CreateCharge creates a card charge. Charges are always created with
// capture enabled; a pending result with an authorize URI means the card
// requires 3-D Secure.
func (a *Adapter) CreateCharge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := chargeRequestBody{
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Card:     req.CardToken,
		Capture:  true,
		Metadata: req.Metadata,
	}
	if a.config.Enable3DS {
		body.ReturnURI = a.config.ReturnURI
	}

	var payload chargePayload
	if err := a.doRequest(ctx, http.MethodPost, "/charges", body, &payload); err != nil {
		return nil, err
	}
	return a.toCharge(&payload)
}

// GetCharge fetches the current state of a charge
func (a *Adapter) GetCharge(ctx context.Context, chargeID string) (*payment.Charge, error) {
	var payload chargePayload
	if err := a.doRequest(ctx, http.MethodGet, "/charges/"+chargeID, nil, &payload); err != nil {
		return nil, err
	}
	return a.toCharge(&payload)
}

// CreateSource creates an offsite payment source
func (a *Adapter) CreateSource(ctx context.Context, req payment.SourceRequest) (*payment.Source, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := sourceRequestBody{
		Type:     string(req.Method),
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Metadata: req.Metadata,
	}
	if req.Method == payment.MethodInstallment {
		body.InstallmentTerms = req.InstallmentTerms
	}

	var payload sourcePayload
	if err := a.doRequest(ctx, http.MethodPost, "/sources", body, &payload); err != nil {
		return nil, err
	}
	return a.toSource(&payload)
}

// GetSource fetches the current state of a source
func (a *Adapter) GetSource(ctx context.Context, sourceID string) (*payment.Source, error) {
	var payload sourcePayload
	if err := a.doRequest(ctx, http.MethodGet, "/sources/"+sourceID, nil, &payload); err != nil {
		return nil, err
	}
	return a.toSource(&payload)
}

// CreateRefund refunds part or all of a settled charge
func (a *Adapter) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.Refund, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := refundRequestBody{Amount: req.AmountMinor, Metadata: req.Metadata}

	var payload refundPayload
	path := fmt.Sprintf("/charges/%s/refunds", req.ChargeID)
	if err := a.doRequest(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, err
	}

	return &payment.Refund{
		ID:          payload.ID,
		ChargeID:    payload.ChargeID,
		AmountMinor: payload.Amount,
		Currency:    payload.Currency,
	}, nil
}

// toCharge converts a gateway charge payload to the domain type
func (a *Adapter) toCharge(payload *chargePayload) (*payment.Charge, error) {
	status, err := parseStatus(payload.Status)
	if err != nil {
		return nil, err
	}
	return &payment.Charge{
		ID:             payload.ID,
		Status:         status,
		AmountMinor:    payload.Amount,
		Currency:       payload.Currency,
		AuthorizeURI:   payload.AuthorizeURI,
		FailureCode:    payload.FailureCode,
		FailureMessage: payload.FailureMessage,
	}, nil
}

// toSource converts a gateway source payload to the domain type
func (a *Adapter) toSource(payload *sourcePayload) (*payment.Source, error) {
	status, err := parseStatus(payload.Status)
	if err != nil {
		return nil, err
	}
	src := &payment.Source{
		ID:           payload.ID,
		Status:       status,
		AmountMinor:  payload.Amount,
		Currency:     payload.Currency,
		Method:       payment.Method(payload.Type),
		AuthorizeURI: payload.AuthorizeURI,
		ChargeID:     payload.ChargeID,
	}
	if payload.ScannableCode != nil {
		src.QRPayload = payload.ScannableCode.Image.DownloadURI
	}
	return src, nil
}

// parseStatus maps the gateway status vocabulary to the domain enum.
// Sources report "pending_charge" while waiting on an async charge; that is
// still pending from the reconciler's point of view.
func parseStatus(raw string) (payment.ChargeStatus, error) {
	switch raw {
	case "successful", "paid", "used":
		return payment.ChargeStatusSuccessful, nil
	case "pending", "pending_charge":
		return payment.ChargeStatusPending, nil
	case "failed":
		return payment.ChargeStatusFailed, nil
	case "expired":
		return payment.ChargeStatusExpired, nil
	default:
		return "", fmt.Errorf("%w: %q", payment.ErrUnknownStatus, raw)
	}
}

// doRequest executes a gateway API call and decodes the response
func (a *Adapter) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(a.config.SecretKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", payment.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var gwErr errorPayload
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Message != "" {
			return fmt.Errorf("%w: %s", payment.ErrChargeRejected, gwErr.Message)
		}
		return fmt.Errorf("%w: unexpected status %d", payment.ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: invalid response: %v", payment.ErrGatewayUnavailable, err)
	}
	return nil
}

// Ensure Adapter implements payment.Gateway
var _ payment.Gateway = (*Adapter)(nil)
