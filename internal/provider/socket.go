package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// socket wraps a websocket connection with the write serialization,
// keepalive, and teardown shared by every provider implementation.
// Wire semantics (what the frames mean) stay in the providers.
type socket struct {
	settings settings
	logger   *slog.Logger

	mu           sync.Mutex
	conn         *websocket.Conn
	closed       bool
	lastActivity time.Time

	writeMu sync.Mutex
	done    chan struct{}
}

func newSocket(s settings, logger *slog.Logger) *socket {
	return &socket{
		settings: s,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// dial opens the connection and installs ping/pong handlers. Handshake
// rejections with 401/403 map to ErrUnauthenticated, everything else to
// ErrConnectFailed.
func (s *socket) dial(ctx context.Context, rawURL string) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.settings.handshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("%w: handshake rejected with status %d", ErrUnauthenticated, resp.StatusCode)
		}
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	conn.SetPingHandler(func(data string) error {
		s.touch()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		s.touch()
		return nil
	})

	s.mu.Lock()
	s.conn = conn
	s.lastActivity = time.Now()
	s.mu.Unlock()

	return nil
}

func (s *socket) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && !s.closed
}

func (s *socket) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// sendJSON marshals v and writes it as a single text frame.
func (s *socket) sendJSON(v any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(s.settings.writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// read blocks for the next frame and returns it with the receipt time
// in epoch milliseconds, captured immediately after the read returns.
func (s *socket) read() ([]byte, int64, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, 0, ErrNotConnected
	}

	_, data, err := conn.ReadMessage()
	receivedAt := time.Now().UnixMilli()
	if err != nil {
		return nil, receivedAt, err
	}
	s.touch()
	return data, receivedAt, nil
}

// readWithDeadline reads one frame with a bounded wait. Used for the
// request/response exchanges during authentication.
func (s *socket) readWithDeadline(d time.Duration) ([]byte, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	conn.SetReadDeadline(time.Now().Add(d))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	s.touch()
	return data, nil
}

// watch closes the connection when the context ends so that a blocked
// read unwinds. Returns when the socket itself is closed.
func (s *socket) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		s.close()
	case <-s.done:
	}
}

// heartbeatLoop sends keepalive pings and tears the connection down
// when the peer has gone silent for three intervals. Read activity and
// pongs both count as liveness.
func (s *socket) heartbeatLoop() {
	if s.settings.heartbeatInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.settings.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			idle := time.Since(s.lastActivity)
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				return
			}

			if idle > 3*s.settings.heartbeatInterval {
				s.logger.Warn("connection stale, closing", "idle", idle.Round(time.Second))
				conn.Close()
				return
			}

			deadline := time.Now().Add(s.settings.writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Warn("keepalive ping failed, closing", "error", err)
				conn.Close()
				return
			}
		}
	}
}

// closing reports whether close has been requested locally, letting the
// read loop tell a deliberate shutdown from a dropped connection.
func (s *socket) closing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// close sends a close frame and releases the connection. Idempotent.
func (s *socket) close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	close(s.done)

	if conn == nil {
		return nil
	}

	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

	return conn.Close()
}
