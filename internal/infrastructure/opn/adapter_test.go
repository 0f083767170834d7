package opn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storesync/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()
	a, err := NewAdapter(Config{
		BaseURL:   serverURL,
		SecretKey: "skey_test_1",
		ReturnURI: "https://shop.example.com/return",
		Enable3DS: true,
		Timeout:   2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return a
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Validate())

	cfg = Config{SecretKey: "skey", Enable3DS: true}
	assert.Error(t, cfg.Validate())

	cfg = Config{SecretKey: "skey"}
	assert.NoError(t, cfg.Validate())
}

func TestCreateCharge_Successful(t *testing.T) {
	var captured chargeRequestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "skey_test_1", user)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"object":"charge","id":"chrg_1","status":"successful","amount":100000,"currency":"THB"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	charge, err := a.CreateCharge(context.Background(), payment.ChargeRequest{
		AmountMinor: 100000,
		Currency:    "THB",
		CardToken:   "tokn_test_1",
		Metadata:    map[string]string{"order_id": "abc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "chrg_1", charge.ID)
	assert.Equal(t, payment.ChargeStatusSuccessful, charge.Status)
	assert.True(t, captured.Capture)
	assert.Equal(t, "https://shop.example.com/return", captured.ReturnURI)
	assert.Equal(t, "abc", captured.Metadata["order_id"])
}

func TestCreateCharge_Pending3DS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"charge","id":"chrg_2","status":"pending","amount":100000,"currency":"THB","authorize_uri":"https://gateway.example/authorize/chrg_2"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	charge, err := a.CreateCharge(context.Background(), payment.ChargeRequest{
		AmountMinor: 100000, Currency: "THB", CardToken: "tokn_test_1",
	})
	require.NoError(t, err)

	assert.Equal(t, payment.ChargeStatusPending, charge.Status)
	assert.Equal(t, "https://gateway.example/authorize/chrg_2", charge.AuthorizeURI)
}

func TestCreateCharge_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"object":"error","code":"invalid_card","message":"card was declined"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	_, err := a.CreateCharge(context.Background(), payment.ChargeRequest{
		AmountMinor: 100000, Currency: "THB", CardToken: "tokn_bad",
	})
	assert.ErrorIs(t, err, payment.ErrChargeRejected)
	assert.Contains(t, err.Error(), "card was declined")
}

func TestCreateCharge_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	a := newTestAdapter(t, server.URL)
	_, err := a.CreateCharge(context.Background(), payment.ChargeRequest{
		AmountMinor: 100000, Currency: "THB", CardToken: "tokn_test_1",
	})
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
}

func TestCreateCharge_UnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"object":"charge","id":"chrg_3","status":"settling","amount":100000,"currency":"THB"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	_, err := a.CreateCharge(context.Background(), payment.ChargeRequest{
		AmountMinor: 100000, Currency: "THB", CardToken: "tokn_test_1",
	})
	assert.ErrorIs(t, err, payment.ErrUnknownStatus)
}

func TestCreateSource_PromptPay(t *testing.T) {
	var captured sourceRequestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"object":"source","id":"src_1","type":"promptpay","flow":"offline","status":"pending","amount":100000,"currency":"THB","scannable_code":{"image":{"download_uri":"https://gateway.example/qr/src_1.png"}}}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	source, err := a.CreateSource(context.Background(), payment.SourceRequest{
		AmountMinor: 100000, Currency: "THB", Method: payment.MethodPromptPay,
	})
	require.NoError(t, err)

	assert.Equal(t, "promptpay", captured.Type)
	assert.Zero(t, captured.InstallmentTerms)
	assert.Equal(t, "src_1", source.ID)
	assert.Equal(t, payment.ChargeStatusPending, source.Status)
	assert.Equal(t, "https://gateway.example/qr/src_1.png", source.QRPayload)
}

func TestCreateSource_Installment(t *testing.T) {
	var captured sourceRequestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"object":"source","id":"src_2","type":"installment","flow":"redirect","status":"pending","amount":600000,"currency":"THB","authorize_uri":"https://gateway.example/pay/src_2"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	source, err := a.CreateSource(context.Background(), payment.SourceRequest{
		AmountMinor: 600000, Currency: "THB",
		Method: payment.MethodInstallment, InstallmentTerms: 6,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, captured.InstallmentTerms)
	assert.Equal(t, "https://gateway.example/pay/src_2", source.AuthorizeURI)
}

func TestGetSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources/src_1", r.URL.Path)
		w.Write([]byte(`{"object":"source","id":"src_1","type":"promptpay","status":"used","amount":100000,"currency":"THB","charge_id":"chrg_9"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	source, err := a.GetSource(context.Background(), "src_1")
	require.NoError(t, err)

	assert.Equal(t, payment.ChargeStatusSuccessful, source.Status)
	assert.Equal(t, "chrg_9", source.ChargeID)
}

func TestCreateRefund(t *testing.T) {
	var captured refundRequestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charges/chrg_1/refunds", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"object":"refund","id":"rfnd_1","charge":"chrg_1","amount":500,"currency":"THB"}`))
	}))
	defer server.Close()

	a := newTestAdapter(t, server.URL)
	refund, err := a.CreateRefund(context.Background(), payment.RefundRequest{
		ChargeID: "chrg_1", AmountMinor: 500,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 500, captured.Amount)
	assert.Equal(t, "rfnd_1", refund.ID)
	assert.Equal(t, "chrg_1", refund.ChargeID)
	assert.EqualValues(t, 500, refund.AmountMinor)
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]payment.ChargeStatus{
		"successful":     payment.ChargeStatusSuccessful,
		"paid":           payment.ChargeStatusSuccessful,
		"used":           payment.ChargeStatusSuccessful,
		"pending":        payment.ChargeStatusPending,
		"pending_charge": payment.ChargeStatusPending,
		"failed":         payment.ChargeStatusFailed,
		"expired":        payment.ChargeStatusExpired,
	} {
		got, err := parseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := parseStatus("reversed")
	assert.ErrorIs(t, err, payment.ErrUnknownStatus)
}
