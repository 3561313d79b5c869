package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
	"github.com/aryan0dhankhar/stockroom/internal/observability/metrics"
)

const (
	pingInterval = 15 * time.Second
	pongWait     = 2 * pingInterval
	writeWait    = 10 * time.Second
	sendBuffer   = 16
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes low-stock alerts to the owner's connected websocket clients
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[*subscriber]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		logger: logger,
	}
}

// Subscribers returns the number of open connections for owner
func (h *Hub) Subscribers(owner uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[owner])
}

// NotifyLowStock broadcasts the alert to every connection of its owner.
// Slow clients whose buffer is full miss the alert.
func (h *Hub) NotifyLowStock(_ context.Context, alert domain.LowStockAlert) error {
	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		domain.LowStockAlert
	}{Type: "low_stock", LowStockAlert: alert})
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[alert.OwnerID] {
		select {
		case s.send <- payload:
			metrics.ObserveAlert("websocket", "sent")
		default:
			metrics.ObserveAlert("websocket", "dropped")
			h.logger.Warn("websocket subscriber too slow, alert dropped",
				slog.String("owner_id", alert.OwnerID.String()),
			)
		}
	}
	return nil
}

// Serve registers conn for owner and blocks until the client disconnects
// or ctx is done. The connection is closed on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, owner uuid.UUID) {
	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(owner, s)
	defer h.unregister(owner, s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(ctx, s)
	}()

	// Reads only detect the close; clients have nothing to say. Each pong
	// extends the deadline inherited from the HTTP server.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error",
					slog.String("owner_id", owner.String()),
					slog.String("error", err.Error()),
				)
			}
			break
		}
	}
	cancel()
	wg.Wait()
	conn.Close()
}

func (h *Hub) writeLoop(ctx context.Context, s *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			s.conn.Close()
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				s.conn.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) register(owner uuid.UUID, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[owner] == nil {
		h.subs[owner] = make(map[*subscriber]struct{})
	}
	h.subs[owner][s] = struct{}{}
	metrics.IncrementSubscribers()
	h.logger.Info("alert subscriber connected", slog.String("owner_id", owner.String()))
}

func (h *Hub) unregister(owner uuid.UUID, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[owner], s)
	if len(h.subs[owner]) == 0 {
		delete(h.subs, owner)
	}
	metrics.DecrementSubscribers()
	h.logger.Info("alert subscriber disconnected", slog.String("owner_id", owner.String()))
}
