package broker

import "context"

// Broker is the automation-client boundary. Implementations drive a
// single stateful brokerage client: every call may block for a real
// brokerage round-trip and may fail with an opaque error. None of the
// implementations are safe for concurrent use; callers must serialize.
type Broker interface {
	Login(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CancelOrder(ctx context.Context, orderID string) (string, error)
	Positions(ctx context.Context) ([]Position, error)
	Balance(ctx context.Context) (*Balance, error)
	OpenOrders(ctx context.Context) ([]Order, error)
	TodayFills(ctx context.Context) ([]Fill, error)
}

// Factory builds a fresh broker handle for one login attempt. Each
// successful login owns its own handle; a re-login always goes through
// the factory again.
type Factory func() Broker
