package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// sign computes HMAC-SHA256 over an already-ordered raw string and hex
// encodes it. MoMo signatures use a fixed documented field order, not
// sorted keys.
func sign(raw, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// createSignatureString builds the raw string for a create-payment
// request. The field order is fixed by the gateway's documentation.
func createSignatureString(accessKey, amount, extraData, ipnURL, orderID, orderInfo, partnerCode, redirectURL, requestID, requestType string) string {
	parts := []string{
		"accessKey=" + accessKey,
		"amount=" + amount,
		"extraData=" + extraData,
		"ipnUrl=" + ipnURL,
		"orderId=" + orderID,
		"orderInfo=" + orderInfo,
		"partnerCode=" + partnerCode,
		"redirectUrl=" + redirectURL,
		"requestId=" + requestID,
		"requestType=" + requestType,
	}
	return strings.Join(parts, "&")
}

// callbackSignatureString builds the raw string for verifying an IPN
// callback, again in the gateway's fixed field order.
func callbackSignatureString(accessKey string, p map[string]string) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		accessKey,
		p["amount"],
		p["extraData"],
		p["message"],
		p["orderId"],
		p["orderInfo"],
		p["orderType"],
		p["partnerCode"],
		p["payType"],
		p["requestId"],
		p["responseTime"],
		p["resultCode"],
		p["transId"],
	)
}

// verifyCallback recomputes the callback signature and compares in
// constant time.
func verifyCallback(params map[string]string, accessKey, secret string) bool {
	received := params["signature"]
	if received == "" {
		return false
	}

	expected := sign(callbackSignatureString(accessKey, params), secret)
	return hmac.Equal([]byte(strings.ToLower(received)), []byte(expected))
}
