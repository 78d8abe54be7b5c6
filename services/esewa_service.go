package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/digital-menu/utils"
)

const (
	esewaSignedFields   = "total_amount,transaction_uuid,product_code"
	esewaStatusComplete = "COMPLETE"
)

// EsewaConfig holds eSewa ePay v2 configuration
type EsewaConfig struct {
	ProductCode string
	SecretKey   string
	BaseURL     string
	SuccessURL  string
	FailureURL  string
}

// SignedPayload is the signed part of the form the client posts to eSewa.
type SignedPayload struct {
	TotalAmount      string `json:"total_amount"`
	ProductCode      string `json:"product_code"`
	SuccessURL       string `json:"success_url"`
	FailureURL       string `json:"failure_url"`
	SignedFieldNames string `json:"signed_field_names"`
	Signature        string `json:"signature"`
}

// EsewaCallbackData is the base64 JSON document eSewa appends to the success URL.
type EsewaCallbackData struct {
	TransactionCode  string          `json:"transaction_code"`
	Status           string          `json:"status"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionUUID  string          `json:"transaction_uuid"`
	ProductCode      string          `json:"product_code"`
	SignedFieldNames string          `json:"signed_field_names"`
	Signature        string          `json:"signature"`
}

// EsewaStatusResponse is the body of the transaction status API.
type EsewaStatusResponse struct {
	ProductCode     string          `json:"product_code"`
	TransactionUUID string          `json:"transaction_uuid"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	RefID           *string         `json:"ref_id"`
}

// VerifiedPayment is what a gateway confirmed. It is stored verbatim on the payment.
type VerifiedPayment struct {
	Response    EsewaStatusResponse `json:"response"`
	DecodedData EsewaCallbackData   `json:"decodedData"`
}

// PaymentVerifier signs outgoing payment requests and verifies callbacks.
type PaymentVerifier interface {
	BuildSignedPayload(amount decimal.Decimal, transactionUUID string) (SignedPayload, error)
	Verify(ctx context.Context, data string) (*VerifiedPayment, error)
}

// EsewaService handles eSewa API interactions
type EsewaService struct {
	config     EsewaConfig
	httpClient *http.Client
}

func NewEsewaService(cfg EsewaConfig) *EsewaService {
	return &EsewaService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConfig validates eSewa configuration
func (es *EsewaService) ValidateConfig() error {
	if es.config.ProductCode == "" {
		return fmt.Errorf("ESEWA_PRODUCT_CODE is not set")
	}
	if es.config.SecretKey == "" {
		return fmt.Errorf("ESEWA_SECRET_KEY is not set")
	}
	if es.config.BaseURL == "" {
		return fmt.Errorf("ESEWA_BASE_URL is not set")
	}
	return nil
}

func (es *EsewaService) BuildSignedPayload(amount decimal.Decimal, transactionUUID string) (SignedPayload, error) {
	if !amount.IsPositive() {
		return SignedPayload{}, fmt.Errorf("payment amount must be greater than zero")
	}
	total := amount.String()
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		total, transactionUUID, es.config.ProductCode)

	return SignedPayload{
		TotalAmount:      total,
		ProductCode:      es.config.ProductCode,
		SuccessURL:       es.config.SuccessURL,
		FailureURL:       es.config.FailureURL,
		SignedFieldNames: esewaSignedFields,
		Signature:        es.sign(message),
	}, nil
}

// Verify decodes the callback data, checks its signature and then asks eSewa
// for the transaction status. Only COMPLETE transactions are accepted.
func (es *EsewaService) Verify(ctx context.Context, data string) (*VerifiedPayment, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, Validationf("invalid payment data encoding")
	}

	var decoded EsewaCallbackData
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, Validationf("invalid payment data")
	}
	if decoded.TransactionUUID == "" {
		return nil, Validationf("payment data has no transaction_uuid")
	}

	message, err := signedMessage(raw, decoded.SignedFieldNames)
	if err != nil {
		return nil, External("invalid payment signature", err)
	}
	if !hmac.Equal([]byte(es.sign(message)), []byte(decoded.Signature)) {
		return nil, External("invalid payment signature", nil)
	}
	if decoded.Status != esewaStatusComplete {
		return nil, External(fmt.Sprintf("payment is %s", decoded.Status), nil)
	}

	status, err := es.checkStatus(ctx, decoded)
	if err != nil {
		return nil, External("failed to verify payment with eSewa", err)
	}
	if status.Status != esewaStatusComplete {
		return nil, External(fmt.Sprintf("eSewa reports payment as %s", status.Status), nil)
	}

	utils.InfoLogger.Printf("eSewa payment verified: transaction_uuid=%s code=%s",
		decoded.TransactionUUID, decoded.TransactionCode)
	return &VerifiedPayment{Response: *status, DecodedData: decoded}, nil
}

func (es *EsewaService) checkStatus(ctx context.Context, decoded EsewaCallbackData) (*EsewaStatusResponse, error) {
	query := url.Values{}
	query.Set("product_code", es.config.ProductCode)
	query.Set("total_amount", decoded.TotalAmount.String())
	query.Set("transaction_uuid", decoded.TransactionUUID)
	endpoint := fmt.Sprintf("%s/api/epay/transaction/status/?%s",
		strings.TrimRight(es.config.BaseURL, "/"), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := es.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status API returned %d: %s", resp.StatusCode, string(body))
	}

	var status EsewaStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("error decoding response: %v", err)
	}
	return &status, nil
}

func (es *EsewaService) sign(message string) string {
	mac := hmac.New(sha256.New, []byte(es.config.SecretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signedMessage rebuilds "field=value,..." from the raw callback JSON in the
// order given by signed_field_names. Numbers keep their original text.
func signedMessage(raw []byte, signedFieldNames string) (string, error) {
	if signedFieldNames == "" {
		return "", fmt.Errorf("signed_field_names is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return "", err
	}

	names := strings.Split(signedFieldNames, ",")
	parts := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		value, ok := fields[name]
		if !ok {
			return "", fmt.Errorf("signed field %s is missing", name)
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, value))
	}
	return strings.Join(parts, ","), nil
}
