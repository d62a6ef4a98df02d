package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"brokergate/internal/events"
)

const heartbeatInterval = 30 * time.Second

// EventStream pushes session and trade events to WebSocket clients,
// with a periodic heartbeat so clients can detect a dead connection.
type EventStream struct {
	bus      *events.Bus
	origin   string
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewEventStream(bus *events.Bus, origin string, log zerolog.Logger) *EventStream {
	return &EventStream{
		bus:    bus,
		origin: origin,
		log:    log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) },
		},
	}
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "*" {
		return true
	}
	reqOrigin := r.Header.Get("Origin")
	if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
		if strings.Contains(reqOrigin, "localhost") || strings.Contains(reqOrigin, "127.0.0.1") {
			return true
		}
	}
	return strings.EqualFold(reqOrigin, origin)
}

func (h *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-sub:
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			beat := events.New(events.TypeHeartbeat, map[string]int64{
				"server_time": time.Now().Unix(),
			})
			if err := conn.WriteJSON(beat); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
