package ws_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/motdlink/integration/transport/ws"
)

// startServer upgrades every inbound request and hands the transport to fn.
func startServer(t *testing.T, fn func(tr *ws.Transport), opts ...ws.UpgradeOption) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr, err := ws.Upgrade(w, r, opts...)
		if err != nil {
			return
		}
		defer tr.Close()
		fn(tr)
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	// Echo server: frames received over the transport are sent back.
	url := startServer(t, func(tr *ws.Transport) {
		for {
			data, err := tr.Receive()
			if err != nil {
				return
			}
			if err := tr.Send(data); err != nil {
				return
			}
		}
	})

	conn := dial(t, url)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"ping"}`)))

	_, echoed, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"ping"}`, string(echoed))
}

func TestTransport_ServerPush(t *testing.T) {
	t.Parallel()

	// Push server: sends without waiting for inbound traffic.
	url := startServer(t, func(tr *ws.Transport) {
		for i := 0; i < 3; i++ {
			if err := tr.Send([]byte(`{"tick":1}`)); err != nil {
				return
			}
		}
		// Block until the peer goes away.
		_, _ = tr.Receive()
	})

	conn := dial(t, url)
	for i := 0; i < 3; i++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"tick":1}`, string(data))
	}
}

func TestTransport_ReceiveAfterPeerClose(t *testing.T) {
	t.Parallel()

	result := make(chan error, 1)
	url := startServer(t, func(tr *ws.Transport) {
		_, err := tr.Receive()
		result <- err
	})

	conn := dial(t, url)
	require.NoError(t, conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	))

	select {
	case err := <-result:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("server receive never unblocked")
	}
}

func TestTransport_CloseUnblocksReceive(t *testing.T) {
	t.Parallel()

	result := make(chan error, 1)
	url := startServer(t, func(tr *ws.Transport) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			tr.Close()
		}()
		_, err := tr.Receive()
		result <- err
	})

	conn := dial(t, url)
	defer conn.Close()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("server receive never unblocked")
	}
}

func TestTransport_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	url := startServer(t, func(tr *ws.Transport) {
		assert.NoError(t, tr.Close())
		assert.NoError(t, tr.Close())
		close(done)
	})

	dial(t, url)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never finished")
	}
}

func TestUpgrade_OriginCheck(t *testing.T) {
	t.Parallel()

	url := startServer(t, func(tr *ws.Transport) {
		_, _ = tr.Receive()
	}, ws.WithOriginCheck(func(r *http.Request) bool {
		return r.Header.Get("Origin") == "https://trusted.example"
	}))

	t.Run("allowed", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"Origin": []string{"https://trusted.example"}}
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.NoError(t, err)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		conn.Close()
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		header := http.Header{"Origin": []string{"https://evil.example"}}
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		require.Error(t, err)
		if resp != nil {
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			resp.Body.Close()
		}
	})
}
