package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"brokergate/internal/broker"
	"brokergate/internal/events"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

var (
	// ErrNotConnected means the operation requires a live broker session.
	ErrNotConnected = errors.New("not logged in to a broker")
	// ErrConnecting means another login attempt is already in flight.
	ErrConnecting = errors.New("a login attempt is already in progress")
)

// Manager owns the single process-wide broker session. The {state,
// handle} pair is guarded by one mutex. The automation client is not
// safe for concurrent use, so the mutex is held for the full duration
// of every trading/query call and the session serializes all callers.
// Login runs outside the lock: it operates on a fresh handle that is
// not yet visible to anyone else, and the Connecting state guards
// against a concurrent double-connect.
type Manager struct {
	mu      sync.Mutex
	state   State
	broker  broker.Broker
	kind    string
	factory broker.Factory
	bus     *events.Bus
	log     zerolog.Logger
}

func NewManager(factory broker.Factory, bus *events.Bus, log zerolog.Logger) *Manager {
	return &Manager{
		state:   StateDisconnected,
		factory: factory,
		bus:     bus,
		log:     log.With().Str("component", "session").Logger(),
	}
}

// Status returns the current state and the broker kind of the live
// session (empty unless connected). It performs no I/O.
func (m *Manager) Status() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.kind
}

// Connect logs in to the broker selected by creds.Kind. A login always
// replaces any previous session: the old handle is discarded without an
// explicit disconnect, mirroring the automation service's behavior (the
// replacement is logged because it can leak a live client connection).
// On failure the session ends Disconnected, never Connecting.
func (m *Manager) Connect(ctx context.Context, creds broker.Credentials) error {
	m.mu.Lock()
	if m.state == StateConnecting {
		m.mu.Unlock()
		return ErrConnecting
	}
	old, oldKind := m.broker, m.kind
	m.state = StateConnecting
	m.broker = nil
	m.kind = ""
	m.mu.Unlock()

	if old != nil {
		m.log.Warn().Str("broker", oldKind).
			Msg("replacing live session without disconnecting the previous handle")
	}

	handle := m.factory()
	err := m.login(ctx, handle, creds)

	m.mu.Lock()
	if err != nil {
		m.state = StateDisconnected
		m.mu.Unlock()
		m.log.Error().Err(err).Str("broker", creds.Kind).Msg("broker login failed")
		return err
	}
	m.state = StateConnected
	m.broker = handle
	m.kind = creds.Kind
	m.mu.Unlock()

	m.log.Info().Str("broker", creds.Kind).Msg("broker session connected")
	m.bus.Publish(events.New(events.TypeSystemStatus, statusPayload{
		Connected:  true,
		BrokerKind: creds.Kind,
	}))
	return nil
}

// login converts a collaborator panic into an error so a misbehaving
// automation client cannot leave the manager stuck in Connecting.
func (m *Manager) login(ctx context.Context, b broker.Broker, creds broker.Credentials) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("broker panicked during login: %v", r)
		}
	}()
	return b.Login(ctx, creds)
}

// Disconnect tears the session down. The state transition happens
// first; the collaborator logout is best-effort and its failure is
// logged, not surfaced.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateConnected || m.broker == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	handle := m.broker
	kind := m.kind
	m.state = StateDisconnected
	m.broker = nil
	m.kind = ""
	m.mu.Unlock()

	if err := handle.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Str("broker", kind).Msg("broker logout failed")
	}
	m.log.Info().Str("broker", kind).Msg("broker session disconnected")
	m.bus.Publish(events.New(events.TypeSystemStatus, statusPayload{
		Connected:  false,
		BrokerKind: kind,
	}))
	return nil
}

// Do runs fn against the live handle while holding the session lock.
// It fails with ErrNotConnected, without touching the collaborator,
// unless the session is Connected.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context, b broker.Broker) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected || m.broker == nil {
		return ErrNotConnected
	}
	return fn(ctx, m.broker)
}

type statusPayload struct {
	Connected  bool   `json:"connected"`
	BrokerKind string `json:"broker_kind"`
}
