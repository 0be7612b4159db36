package backend

import (
	"context"

	"github.com/drblury/ordergate/internal/order"
)

// DemoService implements the fixed demo contract of the order backend:
// CreateOrder echoes the user id as the order id with status PENDING, and
// GetOrders returns a static two-item list.
type DemoService struct{}

func (DemoService) CreateOrder(_ context.Context, req order.CreateOrderRequest) (order.OrderResponse, error) {
	return order.OrderResponse{OrderID: req.UserID, Status: "PENDING"}, nil
}

func (DemoService) GetOrders(context.Context) (order.OrdersList, error) {
	return order.OrdersList{Items: []order.Item{
		{ProductID: "PRO1", Quantity: 10},
		{ProductID: "PRO2", Quantity: 20},
	}}, nil
}
