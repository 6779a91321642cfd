package vnpay

import (
	"fmt"
	"time"
)

type Config struct {
	TmnCode    string // merchant code issued by VNPay
	HashSecret string // secret for the HMAC-SHA512 signature
	APIURL     string // gateway base URL
	ReturnURL  string // browser redirect target
	IPNURL     string // server-to-server webhook target
	Version    string
	Command    string
	CurrCode   string
	Locale     string
	Expiry     time.Duration // how long a payment URL stays valid
}

func NewConfig(tmnCode, hashSecret, apiURL, returnURL, ipnURL string, expiry time.Duration) *Config {
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}
	return &Config{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		APIURL:     apiURL,
		ReturnURL:  returnURL,
		IPNURL:     ipnURL,
		Version:    "2.1.0",
		Command:    "pay",
		CurrCode:   "VND",
		Locale:     "vn",
		Expiry:     expiry,
	}
}

func (c *Config) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("vnpay: TmnCode is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("vnpay: HashSecret is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("vnpay: APIURL is required")
	}
	if c.ReturnURL == "" {
		return fmt.Errorf("vnpay: ReturnURL is required")
	}
	return nil
}

func (c *Config) paymentURL() string {
	return c.APIURL + "/vpcpay.html"
}

func (c *Config) refundURL() string {
	return c.APIURL + "/merchant_webapi/api/transaction"
}

// Gateway response codes.
const (
	ResponseCodeSuccess             = "00"
	ResponseCodeTimeout             = "07"
	ResponseCodeProcessing          = "09"
	ResponseCodeCardLocked          = "10"
	ResponseCodeOTPExpired          = "11"
	ResponseCodeIncorrectOTP        = "13"
	ResponseCodeUserCancelled       = "24"
	ResponseCodeInsufficientBalance = "51"
	ResponseCodeLimitExceeded       = "65"
	ResponseCodeBankMaintenance     = "75"
)

var responseMessages = map[string]string{
	ResponseCodeSuccess:             "transaction successful",
	ResponseCodeTimeout:             "transaction timed out",
	ResponseCodeProcessing:          "transaction is being processed",
	ResponseCodeCardLocked:          "card is locked or restricted",
	ResponseCodeOTPExpired:          "OTP has expired",
	ResponseCodeIncorrectOTP:        "incorrect OTP entered too many times",
	ResponseCodeUserCancelled:       "transaction cancelled by user",
	ResponseCodeInsufficientBalance: "insufficient account balance",
	ResponseCodeLimitExceeded:       "payment limit exceeded",
	ResponseCodeBankMaintenance:     "bank is under maintenance",
}

// ResponseMessage translates a gateway response code for logs and
// customer-facing results.
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return "unknown payment error"
}
