package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const callbackFields = "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names"

func newTestEsewa(baseURL string) *EsewaService {
	return NewEsewaService(EsewaConfig{
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
		BaseURL:     baseURL,
		SuccessURL:  "http://localhost:3000/payment/success",
		FailureURL:  "http://localhost:3000/payment/failure",
	})
}

// callback builds the base64 data eSewa appends to the success URL.
func callback(t *testing.T, es *EsewaService, status string, tamper bool) string {
	t.Helper()
	fields := map[string]interface{}{
		"transaction_code":   "000AWEO",
		"status":             status,
		"total_amount":       "100.0",
		"transaction_uuid":   "11",
		"product_code":       "EPAYTEST",
		"signed_field_names": callbackFields,
	}
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	message, err := signedMessage(raw, callbackFields)
	require.NoError(t, err)

	fields["signature"] = es.sign(message)
	if tamper {
		fields["total_amount"] = "1.0"
	}
	raw, err = json.Marshal(fields)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func statusServer(t *testing.T, status string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/epay/transaction/status/", r.URL.Path)
		assert.Equal(t, "EPAYTEST", r.URL.Query().Get("product_code"))
		assert.Equal(t, "100", r.URL.Query().Get("total_amount"))
		assert.Equal(t, "11", r.URL.Query().Get("transaction_uuid"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"product_code":     "EPAYTEST",
			"transaction_uuid": "11",
			"total_amount":     100,
			"status":           status,
			"ref_id":           "0001TS9",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEsewaValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EsewaConfig
		wantErr bool
	}{
		{"complete", EsewaConfig{ProductCode: "P", SecretKey: "K", BaseURL: "http://x"}, false},
		{"missing product code", EsewaConfig{SecretKey: "K", BaseURL: "http://x"}, true},
		{"missing secret", EsewaConfig{ProductCode: "P", BaseURL: "http://x"}, true},
		{"missing base url", EsewaConfig{ProductCode: "P", SecretKey: "K"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEsewaService(tt.cfg).ValidateConfig()
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestEsewaBuildSignedPayload(t *testing.T) {
	es := newTestEsewa("http://unused")

	payload, err := es.BuildSignedPayload(decimal.NewFromInt(100), "11-201-13")
	require.NoError(t, err)
	assert.Equal(t, "100", payload.TotalAmount)
	assert.Equal(t, "EPAYTEST", payload.ProductCode)
	assert.Equal(t, "total_amount,transaction_uuid,product_code", payload.SignedFieldNames)
	assert.Equal(t, "5DZywcrTKD0gia/rsSMcrRHmJl+4Tbol6S+lWgdJ94E=", payload.Signature)
	assert.Equal(t, "http://localhost:3000/payment/success", payload.SuccessURL)

	_, err = es.BuildSignedPayload(decimal.Zero, "11")
	assert.Error(t, err)
}

func TestEsewaVerify(t *testing.T) {
	srv := statusServer(t, "COMPLETE")
	es := newTestEsewa(srv.URL)

	verified, err := es.Verify(context.Background(), callback(t, es, "COMPLETE", false))
	require.NoError(t, err)
	assert.Equal(t, "000AWEO", verified.DecodedData.TransactionCode)
	assert.Equal(t, "11", verified.DecodedData.TransactionUUID)
	assert.True(t, verified.DecodedData.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, verified.Response.RefID)
	assert.Equal(t, "0001TS9", *verified.Response.RefID)
}

func TestEsewaVerifyRejects(t *testing.T) {
	srv := statusServer(t, "COMPLETE")
	es := newTestEsewa(srv.URL)
	ctx := context.Background()

	_, err := es.Verify(ctx, "%%%not-base64")
	assert.True(t, IsValidation(err))

	_, err = es.Verify(ctx, base64.StdEncoding.EncodeToString([]byte("not json")))
	assert.True(t, IsValidation(err))

	_, err = es.Verify(ctx, callback(t, es, "COMPLETE", true))
	assert.Equal(t, KindExternal, KindOf(err))

	_, err = es.Verify(ctx, callback(t, es, "PENDING", false))
	assert.Equal(t, KindExternal, KindOf(err))
}

func TestEsewaVerifyStatusNotComplete(t *testing.T) {
	srv := statusServer(t, "PENDING")
	es := newTestEsewa(srv.URL)

	_, err := es.Verify(context.Background(), callback(t, es, "COMPLETE", false))
	assert.Equal(t, KindExternal, KindOf(err))
}

func TestSignedMessageKeepsNumberText(t *testing.T) {
	raw := []byte(`{"total_amount":100.0,"transaction_uuid":"11","product_code":"EPAYTEST"}`)
	message, err := signedMessage(raw, esewaSignedFields)
	require.NoError(t, err)
	assert.Equal(t, "total_amount=100.0,transaction_uuid=11,product_code=EPAYTEST", message)

	_, err = signedMessage(raw, "total_amount,missing")
	assert.Error(t, err)
	_, err = signedMessage(raw, "")
	assert.Error(t, err)
}
