package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated      = "OrderCreated"
	EventOrderAcknowledged = "OrderAcknowledged"
	EventOrderShipped      = "OrderShipped"
	EventOrderReceived     = "OrderReceived"
	EventOrderConfirmed    = "OrderConfirmed"
	EventOrderCancelled    = "OrderCancelled"
)

// Envelope wraps every published event. CorrelationID is the order id, so
// consumers can stitch one order's history back together.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"total_cents"`
}

type OrderStatusPayload struct {
	OrderID    string `json:"order_id"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
	Status     Status `json:"status"`
	TotalCents int64  `json:"total_cents"`
}

// StatusEvent maps an order status to its event type name.
func StatusEvent(s Status) string {
	switch s {
	case StatusAcknowledged:
		return EventOrderAcknowledged
	case StatusShipped:
		return EventOrderShipped
	case StatusReceived:
		return EventOrderReceived
	case StatusConfirmed:
		return EventOrderConfirmed
	case StatusCancelled:
		return EventOrderCancelled
	default:
		return EventOrderCreated
	}
}
