package ws

import (
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport wraps one WebSocket connection as a dispatcher.Transport.
type Transport struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// New wraps an already-established connection.
func New(conn *websocket.Conn) *Transport {
	return &Transport{conn: conn}
}

// Receive blocks for the next text or binary frame. Orderly closure,
// whether remote or via Close, surfaces as io.EOF.
func (t *Transport) Receive() ([]byte, error) {
	for {
		mt, data, err := t.conn.ReadMessage()
		if err != nil {
			if isClosed(err) {
				return nil, io.EOF
			}
			return nil, err
		}
		if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
			return data, nil
		}
		// Control frames are handled by gorilla; skip anything else.
	}
}

// Send writes one text frame. Safe for concurrent use.
func (t *Transport) Send(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close performs an orderly shutdown. Idempotent.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		t.writeMu.Unlock()
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) || errors.Is(err, net.ErrClosed)
}

// UpgradeOption configures the HTTP upgrade.
type UpgradeOption func(*websocket.Upgrader)

// WithReadBuffer sets the read buffer size.
func WithReadBuffer(size int) UpgradeOption {
	return func(u *websocket.Upgrader) {
		u.ReadBufferSize = size
	}
}

// WithWriteBuffer sets the write buffer size.
func WithWriteBuffer(size int) UpgradeOption {
	return func(u *websocket.Upgrader) {
		u.WriteBufferSize = size
	}
}

// WithHandshakeTimeout bounds the upgrade handshake.
func WithHandshakeTimeout(timeout time.Duration) UpgradeOption {
	return func(u *websocket.Upgrader) {
		u.HandshakeTimeout = timeout
	}
}

// WithOriginCheck installs a custom origin check.
func WithOriginCheck(fn func(r *http.Request) bool) UpgradeOption {
	return func(u *websocket.Upgrader) {
		u.CheckOrigin = fn
	}
}

// WithAllowAnyOrigin disables origin checking. The bridge authenticates
// per-message, not per-origin.
func WithAllowAnyOrigin() UpgradeOption {
	return func(u *websocket.Upgrader) {
		u.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

// Upgrade upgrades the HTTP request and wraps the resulting connection.
func Upgrade(w http.ResponseWriter, r *http.Request, opts ...UpgradeOption) (*Transport, error) {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	for _, opt := range opts {
		opt(upgrader)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}
