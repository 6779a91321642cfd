package vnpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
)

// Gateway implements the redirect-based VNPay flow: we build a signed
// payment URL, the customer pays on VNPay's pages, and the gateway
// calls back with a signed query string.
type Gateway struct {
	config     *Config
	httpClient *http.Client
	now        func() time.Time
}

func New(config *Config) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Gateway{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}, nil
}

func (g *Gateway) CreatePayment(ctx context.Context, req gateway.CreateRequest) (*gateway.CreateResult, error) {
	if req.PaymentID == "" {
		return nil, fmt.Errorf("vnpay: payment id is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("vnpay: amount must be positive")
	}

	clientIP := req.ClientIP
	if clientIP == "" || clientIP == "::1" {
		// The gateway requires an IPv4 address in the signed payload.
		clientIP = "127.0.0.1"
	}

	locale := req.Locale
	if locale == "" {
		locale = g.config.Locale
	}

	now := g.now().UTC()
	params := map[string]string{
		"vnp_Version":    g.config.Version,
		"vnp_Command":    g.config.Command,
		"vnp_TmnCode":    g.config.TmnCode,
		"vnp_Amount":     formatAmount(req.Amount),
		"vnp_CurrCode":   g.config.CurrCode,
		"vnp_TxnRef":     req.PaymentID,
		"vnp_OrderInfo":  req.OrderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     locale,
		"vnp_ReturnUrl":  g.config.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_ExpireDate": now.Add(g.config.Expiry).Format("20060102150405"),
	}

	payURL := BuildPaymentURL(g.config.paymentURL(), params, g.config.HashSecret)

	return &gateway.CreateResult{
		GatewayRef: req.PaymentID,
		PayURL:     payURL,
	}, nil
}

func (g *Gateway) VerifyCallback(params map[string]string) (*gateway.CallbackResult, error) {
	if !Verify(params, g.config.HashSecret) {
		return nil, model.ErrBadSignature
	}

	code := params["vnp_ResponseCode"]
	result := &gateway.CallbackResult{
		GatewayRef:    params["vnp_TxnRef"],
		TransactionID: params["vnp_TransactionNo"],
		Success:       code == ResponseCodeSuccess,
		ResponseCode:  code,
		Message:       ResponseMessage(code),
		Raw:           params,
	}

	if raw := params["vnp_Amount"]; raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, model.NewGatewayError(model.MethodVNPay, code, "invalid amount in callback", err)
		}
		result.Amount = amount
	}

	return result, nil
}

// Refund calls the merchant refund API. Transaction type 02 is a full
// refund.
func (g *Gateway) Refund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("vnpay: transaction id is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("vnpay: refund amount must be positive")
	}

	now := g.now().UTC()
	refundRef := "RF" + now.Format("20060102150405")

	createdBy := req.RequestedBy
	if createdBy == "" {
		createdBy = "system"
	}

	params := map[string]string{
		"vnp_RequestId":       "REQ" + now.Format("20060102150405"),
		"vnp_Version":         g.config.Version,
		"vnp_Command":         "refund",
		"vnp_TmnCode":         g.config.TmnCode,
		"vnp_TransactionType": "02",
		"vnp_TxnRef":          refundRef,
		"vnp_Amount":          formatAmount(req.Amount),
		"vnp_OrderInfo":       "Refund transaction " + req.TransactionID,
		"vnp_TransactionNo":   req.TransactionID,
		"vnp_TransactionDate": req.TransactionDate,
		"vnp_CreateDate":      now.Format("20060102150405"),
		"vnp_CreateBy":        createdBy,
		"vnp_IpAddr":          "127.0.0.1",
	}
	params["vnp_SecureHash"] = Sign(params, g.config.HashSecret)

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("vnpay: marshal refund request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.refundURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vnpay: build refund request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, model.NewGatewayError(model.MethodVNPay, "", "refund API call failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vnpay: read refund response: %w", err)
	}

	var respData map[string]interface{}
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return nil, fmt.Errorf("vnpay: parse refund response: %w", err)
	}

	responseCode, _ := respData["vnp_ResponseCode"].(string)
	message, _ := respData["vnp_Message"].(string)
	if responseCode != ResponseCodeSuccess {
		return nil, model.NewGatewayError(model.MethodVNPay, responseCode, message, nil)
	}

	return &gateway.RefundResult{
		ProviderRef: refundRef,
		Raw:         respData,
	}, nil
}

// formatAmount renders an amount the way the gateway expects: whole
// currency units times 100, no separators. 100,000 VND -> "10000000".
func formatAmount(amount decimal.Decimal) string {
	return amount.Round(0).Mul(decimal.NewFromInt(100)).StringFixed(0)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(n).Div(decimal.NewFromInt(100)), nil
}
