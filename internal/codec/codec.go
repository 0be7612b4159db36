// Package codec maps canonical order structures to and from the two wire
// envelopes the gateway speaks: JSON and binary protobuf.
package codec

import (
	"fmt"

	"github.com/drblury/ordergate/internal/jsoncodec"
	"github.com/drblury/ordergate/internal/order"
)

// Encoding identifies a wire envelope family.
type Encoding int

const (
	EncodingJSON Encoding = iota
	EncodingBinary
)

// ContentType values recognised on the HTTP surface.
const (
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// FromContentType selects the encoding for a request. Only an exact
// application/octet-stream header selects the binary branch; everything else
// falls back to JSON and fails decoding downstream if the body does not
// parse. Content is never sniffed.
func FromContentType(contentType string) Encoding {
	if contentType == ContentTypeBinary {
		return EncodingBinary
	}
	return EncodingJSON
}

// ContentType returns the response header value for the encoding.
func (e Encoding) ContentType() string {
	if e == EncodingBinary {
		return ContentTypeBinary
	}
	return ContentTypeJSON
}

func (e Encoding) String() string {
	if e == EncodingBinary {
		return "binary"
	}
	return "json"
}

// DecodeError wraps a malformed or truncated wire payload. It marks the
// failure as caused by the client, which the gateway maps to a 4xx status.
type DecodeError struct {
	Encoding Encoding
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s payload: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeCreateOrder parses an order-placement body into its canonical form.
// An empty binary body decodes to the zero request (protobuf absent-field
// semantics); an empty JSON body is an error.
func DecodeCreateOrder(enc Encoding, body []byte) (order.CreateOrderRequest, error) {
	var req order.CreateOrderRequest

	switch enc {
	case EncodingBinary:
		if err := req.UnmarshalBinary(body); err != nil {
			return order.CreateOrderRequest{}, &DecodeError{Encoding: enc, Err: err}
		}
	default:
		if err := jsoncodec.Unmarshal(body, &req); err != nil {
			return order.CreateOrderRequest{}, &DecodeError{Encoding: enc, Err: err}
		}
	}
	return req, nil
}

// EncodeOrderResponse renders the canonical response in the requested
// encoding.
func EncodeOrderResponse(enc Encoding, resp order.OrderResponse) ([]byte, error) {
	if enc == EncodingBinary {
		return resp.MarshalBinary()
	}
	return jsoncodec.Marshal(resp)
}

// EncodeOrdersList renders the canonical order list. The JSON form is a bare
// array of items; the binary form is a GetOrdersResponse message.
func EncodeOrdersList(enc Encoding, list order.OrdersList) ([]byte, error) {
	if enc == EncodingBinary {
		return list.MarshalBinary()
	}
	items := list.Items
	if items == nil {
		items = []order.Item{}
	}
	return jsoncodec.Marshal(items)
}
