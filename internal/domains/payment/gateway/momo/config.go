package momo

import "fmt"

type Config struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string // secret for the HMAC-SHA256 signature
	APIURL      string
	ReturnURL   string // browser redirect target
	IPNURL      string // server-to-server webhook target
}

func NewConfig(partnerCode, accessKey, secretKey, apiURL, returnURL, ipnURL string) *Config {
	return &Config{
		PartnerCode: partnerCode,
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		APIURL:      apiURL,
		ReturnURL:   returnURL,
		IPNURL:      ipnURL,
	}
}

func (c *Config) Validate() error {
	if c.PartnerCode == "" {
		return fmt.Errorf("momo: PartnerCode is required")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("momo: AccessKey is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("momo: SecretKey is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("momo: APIURL is required")
	}
	return nil
}

func (c *Config) createURL() string {
	return c.APIURL + "/v2/gateway/api/create"
}

// Gateway result codes.
const (
	ResultCodeSuccess           = 0
	ResultCodeUserCancelled     = 9000
	ResultCodeInsufficientFunds = 1001
	ResultCodeTimeout           = 1002
	ResultCodeUnavailable       = 1003
	ResultCodeInvalidRequest    = 1004
	ResultCodeFailed            = 1005
	ResultCodeAccountLocked     = 1006
	ResultCodeInvalidSignature  = 4001
)

var resultMessages = map[int]string{
	ResultCodeSuccess:           "transaction successful",
	ResultCodeUserCancelled:     "transaction cancelled by user",
	ResultCodeInsufficientFunds: "insufficient balance",
	ResultCodeTimeout:           "transaction timed out",
	ResultCodeUnavailable:       "payment method unavailable",
	ResultCodeInvalidRequest:    "invalid payment request",
	ResultCodeFailed:            "transaction failed",
	ResultCodeAccountLocked:     "account is locked",
	ResultCodeInvalidSignature:  "invalid signature",
}

// ResultMessage translates a gateway result code for logs and
// customer-facing results.
func ResultMessage(code int) string {
	if msg, ok := resultMessages[code]; ok {
		return msg
	}
	return "unknown payment error"
}
