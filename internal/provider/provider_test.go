package provider

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/front-depiction/cli-stock/internal/model"
)

// discardLogger keeps expected warn-path noise out of test output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// wsServer creates a test WebSocket server driven by handler. The
// request is passed through so handlers can inspect the handshake.
func wsServer(t *testing.T, handler func(*websocket.Conn, *http.Request)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		handler(conn, r)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// recvRecord waits for the next record or fails the test.
func recvRecord(t *testing.T, ch <-chan model.TradeRecord) model.TradeRecord {
	t.Helper()

	select {
	case rec, ok := <-ch:
		if !ok {
			t.Fatal("stream closed before expected record")
		}
		return rec
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for record")
	}
	return model.TradeRecord{}
}

// expectClosed waits for the stream to terminate.
func expectClosed(t *testing.T, ch <-chan model.TradeRecord) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for stream to close")
		}
	}
}
