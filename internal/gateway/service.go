package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"brokergate/internal/broker"
	"brokergate/internal/events"
	"brokergate/internal/session"
)

// Service maps each gateway operation onto the session: precondition
// check, exactly one collaborator call (no retries), and nothing else.
// Every collaborator call runs under a per-call deadline; a deadline
// hit surfaces as an ordinary collaborator failure.
type Service struct {
	sessions     *session.Manager
	bus          *events.Bus
	callTimeout  time.Duration
	loginTimeout time.Duration
	log          zerolog.Logger
}

func NewService(sessions *session.Manager, bus *events.Bus, callTimeout, loginTimeout time.Duration, log zerolog.Logger) *Service {
	return &Service{
		sessions:     sessions,
		bus:          bus,
		callTimeout:  callTimeout,
		loginTimeout: loginTimeout,
		log:          log.With().Str("component", "gateway").Logger(),
	}
}

type HealthStatus struct {
	Connected  bool   `json:"connected"`
	BrokerKind string `json:"broker_kind"`
}

func (s *Service) Health() HealthStatus {
	state, kind := s.sessions.Status()
	return HealthStatus{Connected: state == session.StateConnected, BrokerKind: kind}
}

func (s *Service) Login(ctx context.Context, creds broker.Credentials) error {
	ctx, cancel := context.WithTimeout(ctx, s.loginTimeout)
	defer cancel()
	return s.sessions.Connect(ctx, creds)
}

func (s *Service) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.sessions.Disconnect(ctx)
}

func (s *Service) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	var ack broker.OrderAck
	err := s.do(ctx, func(ctx context.Context, b broker.Broker) error {
		var err error
		ack, err = b.PlaceOrder(ctx, req)
		return err
	})
	if err != nil {
		return broker.OrderAck{}, err
	}
	s.log.Info().
		Str("side", string(req.Side)).
		Str("symbol", req.Symbol).
		Str("price", req.Price.String()).
		Int("quantity", req.Quantity).
		Str("order_id", ack.OrderID).
		Msg("order submitted")
	s.bus.Publish(events.New(events.TypeTradeEvent, ack))
	return ack, nil
}

type CancelResult struct {
	OrderID string `json:"order_id"`
	Result  string `json:"result"`
}

func (s *Service) Cancel(ctx context.Context, orderID string) (CancelResult, error) {
	res := CancelResult{OrderID: orderID}
	err := s.do(ctx, func(ctx context.Context, b broker.Broker) error {
		var err error
		res.Result, err = b.CancelOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return CancelResult{}, err
	}
	s.log.Info().Str("order_id", orderID).Msg("cancel submitted")
	return res, nil
}

func (s *Service) Positions(ctx context.Context) ([]broker.Position, error) {
	var positions []broker.Position
	err := s.do(ctx, func(ctx context.Context, b broker.Broker) error {
		var err error
		positions, err = b.Positions(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if positions == nil {
		positions = []broker.Position{}
	}
	return positions, nil
}

func (s *Service) Balance(ctx context.Context) (*broker.Balance, error) {
	var balance *broker.Balance
	err := s.do(ctx, func(ctx context.Context, b broker.Broker) error {
		var err error
		balance, err = b.Balance(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

func (s *Service) OpenOrders(ctx context.Context) ([]broker.Order, error) {
	var orders []broker.Order
	err := s.do(ctx, func(ctx context.Context, b broker.Broker) error {
		var err error
		orders, err = b.OpenOrders(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []broker.Order{}
	}
	return orders, nil
}

func (s *Service) TodayFills(ctx context.Context) ([]broker.Fill, error) {
	var fills []broker.Fill
	err := s.do(ctx, func(ctx context.Context, b broker.Broker) error {
		var err error
		fills, err = b.TodayFills(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if fills == nil {
		fills = []broker.Fill{}
	}
	return fills, nil
}

func (s *Service) do(ctx context.Context, fn func(ctx context.Context, b broker.Broker) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.sessions.Do(ctx, fn)
}
