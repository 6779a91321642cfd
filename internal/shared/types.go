package shared

// Asynq task types. Kept here so the worker and the enqueueing domains agree
// without importing each other.
const (
	TypeOrderConfirmation        = "order:send_confirmation"
	TypeInventorySync            = "inventory:sync_cache"
	TypeTrackCheckout            = "cart:track_checkout"
	TypeDeactivateExpiredCoupons = "coupon:deactivate_expired"
	TypeCancelExpiredPayments    = "payment:cancel_expired"
)

// Asynq queue names, in priority order.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
