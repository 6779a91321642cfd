package model

// TrackCheckoutPayload is enqueued after a successful checkout so analytics
// processing stays out of the request path.
type TrackCheckoutPayload struct {
	UserID      string `json:"user_id"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	ItemsCount  int    `json:"items_count"`
	Total       string `json:"total"`
}
