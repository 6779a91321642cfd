package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/payment/model"
)

// Strategy is the provider-agnostic gateway contract. Each provider
// turns a create request into whatever the customer needs to pay
// (redirect URL, deeplink, QR code) and verifies its own callbacks.
type Strategy interface {
	CreatePayment(ctx context.Context, req CreateRequest) (*CreateResult, error)

	// VerifyCallback authenticates a callback and normalizes it. A
	// signature mismatch returns model.ErrBadSignature; a payment that
	// failed at the provider is a valid callback with Success=false.
	VerifyCallback(params map[string]string) (*CallbackResult, error)
}

// Refunder is implemented by strategies whose provider exposes a
// merchant refund API.
type Refunder interface {
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

type CreateRequest struct {
	PaymentID   string // merchant reference, becomes the callback key
	OrderNumber string
	Amount      decimal.Decimal
	OrderInfo   string
	ClientIP    string
	Locale      string
}

type CreateResult struct {
	// GatewayRef is the reference the provider will echo back in
	// callbacks. Providers that need per-attempt uniqueness may derive
	// it from PaymentID instead of using it verbatim.
	GatewayRef string `json:"gateway_ref"`

	PayURL    string `json:"pay_url"`
	Deeplink  string `json:"deeplink,omitempty"`
	QRCodeURL string `json:"qr_code_url,omitempty"`

	Raw map[string]interface{} `json:"raw,omitempty"`
}

type CallbackResult struct {
	GatewayRef    string
	TransactionID string
	Success       bool
	ResponseCode  string
	Message       string
	Amount        decimal.Decimal
	Raw           map[string]string
}

type RefundRequest struct {
	TransactionID   string
	TransactionDate string
	Amount          decimal.Decimal
	Reason          string
	RequestedBy     string
}

type RefundResult struct {
	ProviderRef string
	Raw         map[string]interface{}
}

// Registry maps payment methods to their strategies.
type Registry struct {
	strategies map[string]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

func (r *Registry) Register(method string, s Strategy) {
	r.strategies[method] = s
}

// Get returns the strategy for a method or model.ErrUnsupportedMethod.
func (r *Registry) Get(method string) (Strategy, error) {
	s, ok := r.strategies[method]
	if !ok {
		return nil, model.ErrUnsupportedMethod
	}
	return s, nil
}
