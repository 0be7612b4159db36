package order

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire tag numbers. These are part of the external contract shared with the
// backend order service and the payment pipeline and must never be
// renumbered.
const (
	createOrderTagUserID protowire.Number = 1
	createOrderTagItems  protowire.Number = 2

	itemTagProductID protowire.Number = 1
	itemTagQuantity  protowire.Number = 2

	orderResponseTagOrderID protowire.Number = 1
	orderResponseTagStatus  protowire.Number = 2

	ordersListTagData protowire.Number = 1

	paymentEventTagOrderID protowire.Number = 1
	paymentEventTagUserID  protowire.Number = 2
	paymentEventTagStatus  protowire.Number = 3
)

// The encoders follow proto3 semantics: zero-valued scalar fields are
// omitted, and decoding an empty buffer yields the zero value of the target
// struct. 64-bit integers are varints, so the full signed range round-trips.
// Repeated sub-messages are emitted as independent tag-prefixed records and
// accumulated by the decoder until the buffer is exhausted. Unknown fields
// are skipped so schema additions stay backward compatible.

func appendVarintField(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessageField(b []byte, num protowire.Number, sub []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub)
}

func parseErr(msg string, n int) error {
	return fmt.Errorf("order: malformed %s: %w", msg, protowire.ParseError(n))
}

// MarshalBinary encodes the item as a protobuf message body.
func (it Item) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendStringField(b, itemTagProductID, it.ProductID)
	b = appendVarintField(b, itemTagQuantity, it.Quantity)
	return b, nil
}

// UnmarshalBinary decodes a protobuf-encoded item, resetting the receiver
// first.
func (it *Item) UnmarshalBinary(data []byte) error {
	*it = Item{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return parseErr("item tag", n)
		}
		data = data[n:]

		switch {
		case num == itemTagProductID && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return parseErr("item productId", n)
			}
			it.ProductID = s
			data = data[n:]
		case num == itemTagQuantity && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return parseErr("item quantity", n)
			}
			it.Quantity = int64(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return parseErr("item field", n)
			}
			data = data[n:]
		}
	}
	return nil
}

// MarshalBinary encodes the request as a protobuf CreateOrderRequest message.
func (r CreateOrderRequest) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, createOrderTagUserID, r.UserID)
	for _, it := range r.Items {
		sub, err := it.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = appendMessageField(b, createOrderTagItems, sub)
	}
	return b, nil
}

// UnmarshalBinary decodes a protobuf CreateOrderRequest, resetting the
// receiver first. An empty input yields the zero value, not an error.
func (r *CreateOrderRequest) UnmarshalBinary(data []byte) error {
	*r = CreateOrderRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return parseErr("request tag", n)
		}
		data = data[n:]

		switch {
		case num == createOrderTagUserID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return parseErr("request userId", n)
			}
			r.UserID = int64(v)
			data = data[n:]
		case num == createOrderTagItems && typ == protowire.BytesType:
			sub, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return parseErr("request item", n)
			}
			var it Item
			if err := it.UnmarshalBinary(sub); err != nil {
				return err
			}
			r.Items = append(r.Items, it)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return parseErr("request field", n)
			}
			data = data[n:]
		}
	}
	return nil
}

// MarshalBinary encodes the response as a protobuf OrderResponse message.
func (r OrderResponse) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, orderResponseTagOrderID, r.OrderID)
	b = appendStringField(b, orderResponseTagStatus, r.Status)
	return b, nil
}

// UnmarshalBinary decodes a protobuf OrderResponse, resetting the receiver
// first.
func (r *OrderResponse) UnmarshalBinary(data []byte) error {
	*r = OrderResponse{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return parseErr("response tag", n)
		}
		data = data[n:]

		switch {
		case num == orderResponseTagOrderID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return parseErr("response orderId", n)
			}
			r.OrderID = int64(v)
			data = data[n:]
		case num == orderResponseTagStatus && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return parseErr("response status", n)
			}
			r.Status = s
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return parseErr("response field", n)
			}
			data = data[n:]
		}
	}
	return nil
}

// MarshalBinary encodes the list as a protobuf GetOrdersResponse message
// (repeated Item under tag 1).
func (l OrdersList) MarshalBinary() ([]byte, error) {
	var b []byte
	for _, it := range l.Items {
		sub, err := it.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = appendMessageField(b, ordersListTagData, sub)
	}
	return b, nil
}

// UnmarshalBinary decodes a protobuf GetOrdersResponse, resetting the
// receiver first.
func (l *OrdersList) UnmarshalBinary(data []byte) error {
	*l = OrdersList{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return parseErr("orders list tag", n)
		}
		data = data[n:]

		switch {
		case num == ordersListTagData && typ == protowire.BytesType:
			sub, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return parseErr("orders list item", n)
			}
			var it Item
			if err := it.UnmarshalBinary(sub); err != nil {
				return err
			}
			l.Items = append(l.Items, it)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return parseErr("orders list field", n)
			}
			data = data[n:]
		}
	}
	return nil
}

// MarshalBinary encodes the event as a protobuf PaymentEvent message.
func (e PaymentEvent) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, paymentEventTagOrderID, e.OrderID)
	b = appendVarintField(b, paymentEventTagUserID, e.UserID)
	b = appendStringField(b, paymentEventTagStatus, e.Status)
	return b, nil
}

// UnmarshalBinary decodes a protobuf PaymentEvent, resetting the receiver
// first.
func (e *PaymentEvent) UnmarshalBinary(data []byte) error {
	*e = PaymentEvent{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return parseErr("payment event tag", n)
		}
		data = data[n:]

		switch {
		case num == paymentEventTagOrderID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return parseErr("payment event orderId", n)
			}
			e.OrderID = int64(v)
			data = data[n:]
		case num == paymentEventTagUserID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return parseErr("payment event userId", n)
			}
			e.UserID = int64(v)
			data = data[n:]
		case num == paymentEventTagStatus && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return parseErr("payment event status", n)
			}
			e.Status = s
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return parseErr("payment event field", n)
			}
			data = data[n:]
		}
	}
	return nil
}
