package codec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/drblury/ordergate/internal/order"
)

func TestFromContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        Encoding
	}{
		{"application/octet-stream", EncodingBinary},
		{"application/json", EncodingJSON},
		{"application/json; charset=utf-8", EncodingJSON},
		{"text/plain", EncodingJSON},
		{"", EncodingJSON},
		{"application/octet-stream; foo=bar", EncodingJSON},
	}
	for _, tc := range cases {
		if got := FromContentType(tc.contentType); got != tc.want {
			t.Errorf("FromContentType(%q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}

func TestDecodeCreateOrderBothEncodings(t *testing.T) {
	want := order.CreateOrderRequest{UserID: 42, Items: []order.Item{{ProductID: "PRO1", Quantity: 3}}}

	jsonBody := []byte(`{"userId":42,"items":[{"productId":"PRO1","quantity":3}]}`)
	got, err := DecodeCreateOrder(EncodingJSON, jsonBody)
	if err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("json decode mismatch: got %+v", got)
	}

	binBody, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	got, err = DecodeCreateOrder(EncodingBinary, binBody)
	if err != nil {
		t.Fatalf("binary decode failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("binary decode mismatch: got %+v", got)
	}
}

func TestDecodeCreateOrderEmptyBinary(t *testing.T) {
	got, err := DecodeCreateOrder(EncodingBinary, nil)
	if err != nil {
		t.Fatalf("empty binary body must decode to defaults, got %v", err)
	}
	if got.UserID != 0 || len(got.Items) != 0 {
		t.Fatalf("expected zero request, got %+v", got)
	}
}

func TestDecodeCreateOrderMalformed(t *testing.T) {
	_, err := DecodeCreateOrder(EncodingJSON, []byte(`{"userId":`))
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}

	_, err = DecodeCreateOrder(EncodingBinary, []byte{0x0A})
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError for truncated binary, got %v", err)
	}
}

func TestEncodeOrderResponseSymmetry(t *testing.T) {
	resp := order.OrderResponse{OrderID: 42, Status: "PENDING"}

	jsonOut, err := EncodeOrderResponse(EncodingJSON, resp)
	if err != nil {
		t.Fatalf("json encode failed: %v", err)
	}
	if string(jsonOut) != `{"orderId":42,"status":"PENDING"}` {
		t.Fatalf("unexpected json body: %s", jsonOut)
	}

	binOut, err := EncodeOrderResponse(EncodingBinary, resp)
	if err != nil {
		t.Fatalf("binary encode failed: %v", err)
	}
	var decoded order.OrderResponse
	if err := decoded.UnmarshalBinary(binOut); err != nil {
		t.Fatalf("binary decode failed: %v", err)
	}
	if decoded != resp {
		t.Fatalf("binary round trip mismatch: got %+v", decoded)
	}
}

func TestEncodeOrdersListJSONIsBareArray(t *testing.T) {
	out, err := EncodeOrdersList(EncodingJSON, order.OrdersList{Items: []order.Item{{ProductID: "PRO1", Quantity: 10}}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(out) != `[{"productId":"PRO1","quantity":10}]` {
		t.Fatalf("unexpected list body: %s", out)
	}

	out, err = EncodeOrdersList(EncodingJSON, order.OrdersList{})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(out) != `[]` {
		t.Fatalf("empty list must encode as [], got %s", out)
	}
}
