package broker

import (
	"context"
	"errors"
)

var errNotConfigured = errors.New("broker service not configured")

// Disabled stands in for the automation client when no service URL is
// configured: the gateway boots and serves /health, but every session
// operation fails with a clear message.
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (*Disabled) Login(ctx context.Context, creds Credentials) error { return errNotConfigured }
func (*Disabled) Logout(ctx context.Context) error                   { return errNotConfigured }

func (*Disabled) PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error) {
	return OrderAck{}, errNotConfigured
}

func (*Disabled) CancelOrder(ctx context.Context, orderID string) (string, error) {
	return "", errNotConfigured
}

func (*Disabled) Positions(ctx context.Context) ([]Position, error) { return nil, errNotConfigured }
func (*Disabled) Balance(ctx context.Context) (*Balance, error)     { return nil, errNotConfigured }
func (*Disabled) OpenOrders(ctx context.Context) ([]Order, error)   { return nil, errNotConfigured }
func (*Disabled) TodayFills(ctx context.Context) ([]Fill, error)    { return nil, errNotConfigured }
