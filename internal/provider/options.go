package provider

import (
	"log/slog"
	"time"
)

// settings holds tunables shared by every provider implementation.
type settings struct {
	logger            *slog.Logger
	handshakeTimeout  time.Duration
	writeTimeout      time.Duration
	heartbeatInterval time.Duration
	bufferSize        int
	onParseError      func(error)
}

// Option configures a provider.
type Option func(*settings)

func defaultSettings() settings {
	return settings{
		logger:            slog.Default(),
		handshakeTimeout:  10 * time.Second,
		writeTimeout:      5 * time.Second,
		heartbeatInterval: 30 * time.Second,
		bufferSize:        256,
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHandshakeTimeout sets the WebSocket handshake timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.handshakeTimeout = d
	}
}

// WithWriteTimeout sets the deadline applied to outbound frames.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.writeTimeout = d
	}
}

// WithHeartbeatInterval sets the keepalive ping cadence. Zero disables
// client-initiated pings.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *settings) {
		s.heartbeatInterval = d
	}
}

// WithBufferSize sets the record channel capacity.
func WithBufferSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithParseErrorHook registers a callback invoked for every frame that
// fails to decode or validate. Used to drive counters without coupling
// providers to a metrics registry.
func WithParseErrorHook(fn func(error)) Option {
	return func(s *settings) {
		s.onParseError = fn
	}
}

func (s *settings) noteParseError(err error) {
	if s.onParseError != nil {
		s.onParseError(err)
	}
}
