// Package backend hosts the typed gRPC client for the order service, the
// server scaffolding for the same contract, and the wire codec they share.
package backend

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/drblury/ordergate/internal/order"
)

const (
	methodCreateOrder = "/order.OrderService/CreateOrder"
	methodGetOrders   = "/order.OrderService/GetOrders"

	defaultCallTimeout = 10 * time.Second
)

// Client is a typed client for the backend order service. It owns a single
// long-lived connection created at startup; gRPC multiplexes concurrent
// in-flight calls over it, so one Client serves all requests.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

type clientOptions struct {
	timeout time.Duration
	dial    []grpc.DialOption
}

// Option customises the client.
type Option func(*clientOptions)

// WithCallTimeout bounds each unary call. Zero or negative keeps the
// default.
func WithCallTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithDialOptions appends extra gRPC dial options (tests use this to dial
// in-memory listeners).
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *clientOptions) {
		o.dial = append(o.dial, opts...)
	}
}

// New connects the client to the backend at addr. The connection is
// established lazily, so New succeeds even while the backend is down;
// individual calls surface *UnavailableError instead.
func New(addr string, opts ...Option) (*Client, error) {
	options := clientOptions{timeout: defaultCallTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(wireCodec{})),
	}, options.dial...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn, timeout: options.timeout}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// CreateOrder places an order and returns the backend's canonical answer.
func (c *Client) CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.OrderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp order.OrderResponse
	if err := c.conn.Invoke(ctx, methodCreateOrder, &req, &resp); err != nil {
		return order.OrderResponse{}, mapCallError(err)
	}
	return resp, nil
}

// GetOrders fetches the backend's order item list.
func (c *Client) GetOrders(ctx context.Context) (order.OrdersList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var list order.OrdersList
	if err := c.conn.Invoke(ctx, methodGetOrders, &emptyMessage{}, &list); err != nil {
		return order.OrdersList{}, mapCallError(err)
	}
	return list, nil
}
