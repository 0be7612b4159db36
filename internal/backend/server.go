package backend

import (
	"context"

	"google.golang.org/grpc"

	"github.com/drblury/ordergate/internal/order"
)

// OrderService is the server-side contract of the order backend.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateOrderRequest) (order.OrderResponse, error)
	GetOrders(ctx context.Context) (order.OrdersList, error)
}

// NewServer builds a gRPC server exposing svc under order.OrderService,
// speaking the same wire codec as the Client.
func NewServer(svc OrderService, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ForceServerCodec(wireCodec{}))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&orderServiceDesc, svc)
	return srv
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: "order.OrderService",
	HandlerType: (*OrderService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: createOrderHandler},
		{MethodName: "GetOrders", Handler: getOrdersHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func createOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(order.CreateOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	invoke := func(ctx context.Context, req any) (any, error) {
		resp, err := srv.(OrderService).CreateOrder(ctx, *req.(*order.CreateOrderRequest))
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}
	if interceptor == nil {
		return invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodCreateOrder}
	return interceptor(ctx, in, info, invoke)
}

func getOrdersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptyMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	invoke := func(ctx context.Context, _ any) (any, error) {
		list, err := srv.(OrderService).GetOrders(ctx)
		if err != nil {
			return nil, err
		}
		return &list, nil
	}
	if interceptor == nil {
		return invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetOrders}
	return interceptor(ctx, in, info, invoke)
}
