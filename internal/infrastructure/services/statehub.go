// Package services provides infrastructure services.
package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// AuthStateEventName is the SSE event name seen by the station UI.
const AuthStateEventName = "authStateChanged"

// AuthStateEvent is pushed to every open UI stream on login and logout.
type AuthStateEvent struct {
	IsLoggedIn bool               `json:"isLoggedIn"`
	Employee   *employee.Employee `json:"employee"`
	OccurredAt time.Time          `json:"occurredAt"`
	// Remote is set when the change happened in another process.
	Remote bool `json:"remote,omitempty"`
}

// SSEConn is one open UI event stream.
type SSEConn struct {
	ID          string
	Send        chan []byte
	ConnectedAt time.Time
	closed      atomic.Bool
}

// TrySend reports false when the connection is closed or its buffer is full.
func (c *SSEConn) TrySend(data []byte) (sent bool) {
	if c.closed.Load() {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *SSEConn) Close() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.Send)
	}
}

// StateHub fans auth state changes out to UI event streams.
type StateHub struct {
	conns    map[string]*SSEConn
	connsMu  sync.RWMutex
	maxConns int
	shutdown atomic.Bool
	logger   logger.Interface
}

// NewStateHub limits the number of open streams to maxConns (default 16).
func NewStateHub(maxConns int, log logger.Interface) *StateHub {
	if maxConns <= 0 {
		maxConns = 16
	}
	return &StateHub{
		conns:    make(map[string]*SSEConn),
		maxConns: maxConns,
		logger:   log,
	}
}

// Register returns nil when the hub is shut down or full.
func (h *StateHub) Register(connID string) *SSEConn {
	if h.shutdown.Load() {
		return nil
	}

	h.connsMu.Lock()
	defer h.connsMu.Unlock()

	if len(h.conns) >= h.maxConns {
		h.logger.Warnw("SSE connection limit exceeded", "limit", h.maxConns)
		return nil
	}

	conn := &SSEConn{
		ID:          connID,
		Send:        make(chan []byte, 16),
		ConnectedAt: biztime.Now(),
	}
	h.conns[connID] = conn
	h.logger.Debugw("SSE connection registered", "conn_id", connID)
	return conn
}

func (h *StateHub) Unregister(connID string) {
	h.connsMu.Lock()
	conn, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
	}
	h.connsMu.Unlock()

	if ok {
		conn.Close()
		h.logger.Debugw("SSE connection unregistered", "conn_id", connID)
	}
}

func (h *StateHub) ConnCount() int {
	h.connsMu.RLock()
	defer h.connsMu.RUnlock()
	return len(h.conns)
}

func (h *StateHub) Broadcast(event *AuthStateEvent) {
	data, err := FormatSSEEvent(AuthStateEventName, event)
	if err != nil {
		h.logger.Errorw("failed to format SSE event", "error", err)
		return
	}

	h.connsMu.RLock()
	defer h.connsMu.RUnlock()

	for _, conn := range h.conns {
		if !conn.TrySend(data) {
			h.logger.Warnw("failed to send SSE event, channel full", "conn_id", conn.ID)
		}
	}
}

// Shutdown closes every stream. Safe to call more than once.
func (h *StateHub) Shutdown() {
	if !h.shutdown.CompareAndSwap(false, true) {
		return
	}

	h.connsMu.Lock()
	for _, conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[string]*SSEConn)
	h.connsMu.Unlock()
}

// FormatSSEEvent renders "event: <name>\ndata: <json>\n\n".
func FormatSSEEvent(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)), nil
}
