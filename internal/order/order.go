// Package order defines the canonical, encoding-agnostic order structures and
// their binary protobuf wire form.
//
// The JSON struct tags and the wire tag constants together are the explicit
// field-name mapping table between the external encodings: JSON uses
// camelCase names, the binary form uses the numeric tags below, and the Go
// field names never leak onto a wire.
package order

// Item is a single order line.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// CreateOrderRequest is the canonical order-placement request. It is built
// per request and never shared across requests.
type CreateOrderRequest struct {
	UserID int64  `json:"userId"`
	Items  []Item `json:"items"`
}

// OrderResponse is the canonical backend answer to a placed order. Status is
// an open set of uppercase strings (PENDING, PROCESSING, ...) treated as
// opaque.
type OrderResponse struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

// OrdersList is the canonical answer to a list-orders call.
type OrdersList struct {
	Items []Item `json:"items"`
}

// PaymentEvent is the derived event emitted for every accepted order. It is
// immutable after construction; the broker delivers it at least once, so
// consumers deduplicate on OrderID.
type PaymentEvent struct {
	OrderID int64  `json:"orderId"`
	UserID  int64  `json:"userId"`
	Status  string `json:"status"`
}
