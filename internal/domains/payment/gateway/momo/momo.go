package momo

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

// Gateway implements the MoMo wallet flow: a server-to-server create
// call returns a payUrl/deeplink/QR code, then MoMo posts a signed JSON
// IPN when the customer finishes.
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
		return nil, fmt.Errorf("momo: payment id is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("momo: amount must be positive")
	}

	// MoMo rejects a reused orderId, so each attempt gets a unique
	// reference derived from the payment id.
	ts := g.now().Unix()
	orderID := fmt.Sprintf("%s-%d", req.PaymentID, ts)
	requestID := fmt.Sprintf("%s-%d", req.PaymentID, ts)

	amount := req.Amount.Round(0).StringFixed(0)
	requestType := "captureWallet"
	extraData := ""

	signature := sign(createSignatureString(
		g.config.AccessKey,
		amount,
		extraData,
		g.config.IPNURL,
		orderID,
		req.OrderInfo,
		g.config.PartnerCode,
		g.config.ReturnURL,
		requestID,
		requestType,
	), g.config.SecretKey)

	requestBody := map[string]interface{}{
		"partnerCode": g.config.PartnerCode,
		"accessKey":   g.config.AccessKey,
		"requestId":   requestID,
		"amount":      amount,
		"orderId":     orderID,
		"orderInfo":   req.OrderInfo,
		"redirectUrl": g.config.ReturnURL,
		"ipnUrl":      g.config.IPNURL,
		"requestType": requestType,
		"extraData":   extraData,
		"signature":   signature,
		"lang":        "vi",
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("momo: marshal create request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.createURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("momo: build create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, model.NewGatewayError(model.MethodMomo, "", "create API call failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("momo: read create response: %w", err)
	}

	var respData map[string]interface{}
	if err := json.Unmarshal(respBody, &respData); err != nil {
		return nil, fmt.Errorf("momo: parse create response: %w", err)
	}

	resultCode := 0
	if raw, ok := respData["resultCode"].(float64); ok {
		resultCode = int(raw)
	}
	if resultCode != ResultCodeSuccess {
		message, _ := respData["message"].(string)
		if message == "" {
			message = ResultMessage(resultCode)
		}
		return nil, model.NewGatewayError(model.MethodMomo, strconv.Itoa(resultCode), message, nil)
	}

	payURL, _ := respData["payUrl"].(string)
	deeplink, _ := respData["deeplink"].(string)
	qrCodeURL, _ := respData["qrCodeUrl"].(string)

	return &gateway.CreateResult{
		GatewayRef: orderID,
		PayURL:     payURL,
		Deeplink:   deeplink,
		QRCodeURL:  qrCodeURL,
		Raw:        respData,
	}, nil
}

func (g *Gateway) VerifyCallback(params map[string]string) (*gateway.CallbackResult, error) {
	if !verifyCallback(params, g.config.AccessKey, g.config.SecretKey) {
		return nil, model.ErrBadSignature
	}

	resultCode, err := strconv.Atoi(params["resultCode"])
	if err != nil {
		return nil, model.NewGatewayError(model.MethodMomo, params["resultCode"], "invalid result code in callback", err)
	}

	message := params["message"]
	if message == "" {
		message = ResultMessage(resultCode)
	}

	result := &gateway.CallbackResult{
		GatewayRef:    params["orderId"],
		TransactionID: params["transId"],
		Success:       resultCode == ResultCodeSuccess,
		ResponseCode:  strconv.Itoa(resultCode),
		Message:       message,
		Raw:           params,
	}

	if raw := params["amount"]; raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			result.Amount = decimal.NewFromInt(n)
		}
	}

	return result, nil
}
