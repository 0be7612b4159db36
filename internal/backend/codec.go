package backend

import (
	"encoding"
	"fmt"
)

// wireCodec plugs the hand-rolled protobuf wire format into gRPC. It names
// itself "proto" so the frames carry the standard application/grpc+proto
// content subtype and interoperate with any backend implementing the
// order.OrderService contract.
type wireCodec struct{}

func (wireCodec) Name() string { return "proto" }

func (wireCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("backend: cannot marshal %T", v)
	}
	return m.MarshalBinary()
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	u, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("backend: cannot unmarshal into %T", v)
	}
	return u.UnmarshalBinary(data)
}

// emptyMessage is the wire form of a request with no fields (GetOrders).
type emptyMessage struct{}

func (emptyMessage) MarshalBinary() ([]byte, error) { return nil, nil }

func (*emptyMessage) UnmarshalBinary([]byte) error { return nil }
