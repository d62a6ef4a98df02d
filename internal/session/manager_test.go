package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokergate/internal/broker"
	"brokergate/internal/events"
)

// blockingBroker lets tests hold a login in flight.
type blockingBroker struct {
	id        int
	loginErr  error
	loginGate chan struct{}
	panics    bool
	logoutErr error
	logouts   atomic.Int64
	orders    atomic.Int64
}

func (f *blockingBroker) Login(ctx context.Context, creds broker.Credentials) error {
	if f.panics {
		panic("automation client crashed")
	}
	if f.loginGate != nil {
		<-f.loginGate
	}
	return f.loginErr
}

func (f *blockingBroker) Logout(ctx context.Context) error {
	f.logouts.Add(1)
	return f.logoutErr
}

func (f *blockingBroker) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	f.orders.Add(1)
	time.Sleep(time.Millisecond)
	return broker.OrderAck{OrderID: "1", Symbol: req.Symbol, Price: req.Price, Quantity: req.Quantity, Side: req.Side}, nil
}

func (f *blockingBroker) CancelOrder(ctx context.Context, orderID string) (string, error) {
	return "", nil
}

func (f *blockingBroker) Positions(ctx context.Context) ([]broker.Position, error) { return nil, nil }
func (f *blockingBroker) Balance(ctx context.Context) (*broker.Balance, error)     { return nil, nil }
func (f *blockingBroker) OpenOrders(ctx context.Context) ([]broker.Order, error)   { return nil, nil }
func (f *blockingBroker) TodayFills(ctx context.Context) ([]broker.Fill, error)    { return nil, nil }

func newManager(brokers ...*blockingBroker) (*Manager, *atomic.Int64) {
	var built atomic.Int64
	factory := broker.Factory(func() broker.Broker {
		n := built.Add(1)
		return brokers[int(n)-1]
	})
	return NewManager(factory, events.NewBus(), zerolog.Nop()), &built
}

func TestConnectTransitions(t *testing.T) {
	m, _ := newManager(&blockingBroker{})
	state, kind := m.Status()
	assert.Equal(t, StateDisconnected, state)
	assert.Empty(t, kind)

	require.NoError(t, m.Connect(context.Background(), broker.Credentials{Kind: "yh"}))
	state, kind = m.Status()
	assert.Equal(t, StateConnected, state)
	assert.Equal(t, "yh", kind)
}

func TestConnectFailureEndsDisconnected(t *testing.T) {
	m, _ := newManager(&blockingBroker{loginErr: errors.New("登录失败")})
	err := m.Connect(context.Background(), broker.Credentials{Kind: "yh"})
	require.Error(t, err)
	state, _ := m.Status()
	assert.Equal(t, StateDisconnected, state)
}

func TestConnectPanicEndsDisconnected(t *testing.T) {
	m, _ := newManager(&blockingBroker{panics: true})
	err := m.Connect(context.Background(), broker.Credentials{Kind: "yh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	state, _ := m.Status()
	assert.Equal(t, StateDisconnected, state, "state must never stay Connecting")
}

func TestLoginReplacesPreviousHandle(t *testing.T) {
	first := &blockingBroker{id: 1}
	second := &blockingBroker{id: 2}
	m, built := newManager(first, second)

	require.NoError(t, m.Connect(context.Background(), broker.Credentials{Kind: "yh"}))
	require.NoError(t, m.Connect(context.Background(), broker.Credentials{Kind: "ht", Username: "u", Password: "p"}))

	assert.EqualValues(t, 2, built.Load())
	state, kind := m.Status()
	assert.Equal(t, StateConnected, state)
	assert.Equal(t, "ht", kind)

	// The replaced handle was discarded, not disconnected.
	assert.EqualValues(t, 0, first.logouts.Load())

	// Operations run against the second handle.
	require.NoError(t, m.Do(context.Background(), func(ctx context.Context, b broker.Broker) error {
		assert.Same(t, second, b)
		return nil
	}))
}

func TestConcurrentConnectIsRejected(t *testing.T) {
	gate := make(chan struct{})
	m, _ := newManager(&blockingBroker{loginGate: gate}, &blockingBroker{})

	done := make(chan error, 1)
	go func() {
		done <- m.Connect(context.Background(), broker.Credentials{Kind: "yh"})
	}()

	require.Eventually(t, func() bool {
		state, _ := m.Status()
		return state == StateConnecting
	}, time.Second, time.Millisecond)

	err := m.Connect(context.Background(), broker.Credentials{Kind: "yh"})
	assert.ErrorIs(t, err, ErrConnecting)

	// Trading during a login attempt is unavailable.
	err = m.Do(context.Background(), func(ctx context.Context, b broker.Broker) error { return nil })
	assert.ErrorIs(t, err, ErrNotConnected)

	close(gate)
	require.NoError(t, <-done)
	state, _ := m.Status()
	assert.Equal(t, StateConnected, state)
}

func TestDisconnect(t *testing.T) {
	b := &blockingBroker{}
	m, _ := newManager(b)

	assert.ErrorIs(t, m.Disconnect(context.Background()), ErrNotConnected)

	require.NoError(t, m.Connect(context.Background(), broker.Credentials{Kind: "yh"}))
	require.NoError(t, m.Disconnect(context.Background()))
	assert.EqualValues(t, 1, b.logouts.Load())
	state, kind := m.Status()
	assert.Equal(t, StateDisconnected, state)
	assert.Empty(t, kind)
}

func TestDisconnectIsBestEffort(t *testing.T) {
	b := &blockingBroker{logoutErr: errors.New("客户端已退出")}
	m, _ := newManager(b)
	require.NoError(t, m.Connect(context.Background(), broker.Credentials{Kind: "yh"}))

	// Collaborator failure during logout still ends Disconnected.
	require.NoError(t, m.Disconnect(context.Background()))
	state, _ := m.Status()
	assert.Equal(t, StateDisconnected, state)
}

func TestConcurrentTradingKeepsStateConsistent(t *testing.T) {
	b := &blockingBroker{}
	m, _ := newManager(b)
	require.NoError(t, m.Connect(context.Background(), broker.Credentials{Kind: "yh"}))

	const workers = 8
	const perWorker = 10
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		side := broker.SideBuy
		if i%2 == 1 {
			side = broker.SideSell
		}
		wg.Add(1)
		go func(side broker.Side) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := m.Do(context.Background(), func(ctx context.Context, br broker.Broker) error {
					_, err := br.PlaceOrder(ctx, broker.OrderRequest{
						Symbol:   "sh600000",
						Price:    decimal.RequireFromString("10.5"),
						Quantity: 100,
						Side:     side,
					})
					return err
				})
				assert.NoError(t, err)
			}
		}(side)
	}

	// Health checks in parallel must never observe a torn state.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < workers*perWorker; i++ {
			state, kind := m.Status()
			assert.Equal(t, StateConnected, state)
			assert.Equal(t, "yh", kind)
		}
	}()

	wg.Wait()
	assert.EqualValues(t, workers*perWorker, b.orders.Load())
	state, _ := m.Status()
	assert.Equal(t, StateConnected, state)
}
