package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgpay/config"
	"kgpay/entity"
)

func testConfig(apiURL string) *config.Config {
	conf := &config.Config{}
	conf.Gateway.Sid = "SID1"
	conf.Gateway.MerchantKey = "K"
	conf.Gateway.ApiURL = apiURL
	conf.Gateway.SiteURL = "https://shop.example.com"
	return conf
}

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(testConfig(server.URL))
}

func decodePayload(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	return payload
}

func TestRegisterSuccess(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, registrationPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000","result_msg":"OK","tid":"TID123"}`))
	})

	result := gateway.Register(context.Background(), &entity.RegistrationRequest{
		TradeID:     "TRD1",
		Amount:      1000,
		ProductName: "test product",
		OkURL:       "https://shop.example.com/payment/result",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "TID123", result.Tid)
	assert.Contains(t, result.PaymentURL, paymentWindowPath+"?tid=TID123")

	assert.Equal(t, "SID1", payload["sid"])
	assert.Equal(t, "TRD1", payload["trade_id"])
	assert.Equal(t, "https://shop.example.com", payload["site_url"])
	amount, ok := payload["amount"].(map[string]any)
	require.True(t, ok, "amount must be the nested wrapper")
	assert.Equal(t, "1000", amount["total"])
}

func TestRegisterOmitsUnsetOptionalFields(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000","tid":"TID1"}`))
	})

	result := gateway.Register(context.Background(), &entity.RegistrationRequest{
		TradeID:     "TRD1",
		Amount:      1000,
		ProductName: "p",
		OkURL:       "https://shop.example.com/ok",
	})
	require.True(t, result.Success)

	// absence must be absence: the vendor treats key presence as meaningful
	for _, key := range []string{
		"cash_code", "call_type", "hybrid_pay", "noti_url", "close_url",
		"fail_url", "user_name", "user_email", "only_once", "time_stamp",
		"mstr", "bank_code",
	} {
		_, present := payload[key]
		assert.False(t, present, "unset optional field %q must not be a key", key)
	}
}

func TestRegisterSendsSetOptionalFields(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000","tid":"TID1"}`))
	})

	result := gateway.Register(context.Background(), &entity.RegistrationRequest{
		TradeID:     "TRD1",
		Amount:      1000,
		ProductName: "p",
		OkURL:       "https://shop.example.com/ok",
		CashCode:    "VA",
		CallType:    "P",
		HybridPay:   "Y",
		NotiURL:     "https://shop.example.com/noti",
		BankCode:    "004",
		TimeStamp:   "20251231235959",
	})
	require.True(t, result.Success)

	assert.Equal(t, "VA", payload["cash_code"])
	assert.Equal(t, "P", payload["call_type"])
	assert.Equal(t, "Y", payload["hybrid_pay"])
	assert.Equal(t, "https://shop.example.com/noti", payload["noti_url"])
	assert.Equal(t, "004", payload["bank_code"])
	assert.Equal(t, "20251231235959", payload["time_stamp"])
}

func TestRegisterVendorRejection(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result_code":"1001","result_msg":"invalid merchant"}`))
	})

	result := gateway.Register(context.Background(), &entity.RegistrationRequest{
		TradeID:     "TRD1",
		Amount:      1000,
		ProductName: "p",
		OkURL:       "https://shop.example.com/ok",
	})

	assert.False(t, result.Success)
	assert.Empty(t, result.PaymentURL)
	assert.Equal(t, "invalid merchant (code: 1001)", result.Error)
}

func TestRegisterTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	gateway := NewGateway(testConfig(server.URL))

	result := gateway.Register(context.Background(), &entity.RegistrationRequest{
		TradeID:     "TRD1",
		Amount:      1000,
		ProductName: "p",
		OkURL:       "https://shop.example.com/ok",
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestRegisterRejectsNonPositiveAmount(t *testing.T) {
	gateway := NewGateway(testConfig("http://127.0.0.1:1"))

	result := gateway.Register(context.Background(), &entity.RegistrationRequest{
		TradeID:     "TRD1",
		ProductName: "p",
		OkURL:       "https://shop.example.com/ok",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "amount must be positive", result.Error)
}

func TestApprove(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, approvalPath, r.URL.Path)
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000","tid":"TID1","pay_data":"xyz"}`))
	})

	result := gateway.Approve(context.Background(), &entity.ApprovalRequest{
		Tid:      "TID1",
		CashCode: "CN",
		Amount:   1000,
		PayToken: "PT1",
	})

	require.True(t, result.Success, result.Error)
	assert.Contains(t, string(result.Data), "pay_data")
	assert.Equal(t, "TID1", payload["tid"])
	assert.Equal(t, "CN", payload["cash_code"])
	assert.Equal(t, "1000", payload["amount"])
	assert.Equal(t, "PT1", payload["pay_token"])
}

func TestApproveVendorRejection(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result_code":"4001","result_msg":"expired token"}`))
	})

	result := gateway.Approve(context.Background(), &entity.ApprovalRequest{
		Tid: "TID1", CashCode: "CN", Amount: 1000, PayToken: "PT1",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "expired token (code: 4001)", result.Error)
}

func TestCancelCarriesHmacSignature(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, cancellationPath, r.URL.Path)
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000"}`))
	})

	result := gateway.Cancel(context.Background(), &entity.CancellationRequest{
		TradeID:  "T1",
		CashCode: "CN",
		Amount:   1000,
		PayToken: "PT1",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "EkUoGPwbfFQ8iBVbRRW2AEqIgT2qUtrI6N+V9hVpNN4=", payload["hmac"])
	assert.Equal(t, "C", payload["cancel_type"])
	assert.Equal(t, "N", payload["part_cancel"])
	assert.Equal(t, "1000", payload["amount"])

	// unset tax breakdown must not appear as keys
	for _, key := range []string{"bill_type", "tax", "tax_free", "tax_amount"} {
		_, present := payload[key]
		assert.False(t, present, "unset field %q must not be a key", key)
	}
}

func TestCancelPartial(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000"}`))
	})

	result := gateway.Cancel(context.Background(), &entity.CancellationRequest{
		TradeID:    "T1",
		CashCode:   "CN",
		Amount:     300,
		PayToken:   "PT1",
		PartCancel: "Y",
		BillType:   "00",
		Tax:        30,
	})

	require.True(t, result.Success)
	assert.Equal(t, "Y", payload["part_cancel"])
	assert.Equal(t, "300", payload["amount"], "partial cancel carries the partial amount")
	assert.Equal(t, "00", payload["bill_type"])
	assert.Equal(t, "30", payload["tax"])
}

func TestStatusSignsWithSaltedHash(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, statusPath, r.URL.Path)
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000","status":"PAID"}`))
	})
	gateway.now = func() time.Time {
		return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}

	result := gateway.Status(context.Background(), "ORD1")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "ORD1", payload["trade_id"])
	assert.Equal(t, "20250101120000", payload["time_stamp"])
	assert.Equal(t,
		"347135768a02a6d9fc350cdc52c0ab522c42bd85e763cec054d40896c6b14946",
		payload["auth_token"])
	// the salted hash path, not the base64 HMAC
	assert.NotContains(t, payload["auth_token"], "=")
}

func TestBillingPay(t *testing.T) {
	var payload map[string]any
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, billingPaymentPath, r.URL.Path)
		payload = decodePayload(t, r)
		_, _ = w.Write([]byte(`{"result_code":"0000"}`))
	})

	result := gateway.BillingPay(context.Background(), &entity.BillingPaymentRequest{
		BillingKey:  "BK1",
		TradeID:     "TRD9",
		Amount:      5000,
		ProductName: "subscription",
		UserName:    "buyer",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "BK1", payload["billing_key"])
	assert.Equal(t, "TRD9", payload["trade_id"])
	assert.NotEmpty(t, payload["auth_token"])
	amount, ok := payload["amount"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "5000", amount["total"])
}

func TestMalformedVendorResponse(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	})

	result := gateway.Status(context.Background(), "ORD1")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "parse response")
}
