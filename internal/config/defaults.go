package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultProvider      = "finnhub"
	DefaultFinnhubWSURL  = "wss://ws.finnhub.io"
	DefaultPolygonWSURL  = "wss://socket.polygon.io/stocks"
	DefaultCapacity      = 1024
	DefaultSortChunk     = 16
	DefaultWindowKind    = "event"
	DefaultWindowSize    = 50
	DefaultWindowSpan    = time.Minute
	DefaultMaxTrades     = 20
	DefaultRefresh       = 100 * time.Millisecond
	DefaultSignalPeriod  = time.Second
	DefaultNATSSubject   = "trades"
	DefaultRedisChannel  = "trades"
	DefaultRedisFlush    = 250 * time.Millisecond
	DefaultRedisBatch    = 100
	DefaultMetricsAddr   = ":9090"
	DefaultRSIOversold   = 30
	DefaultRSIOverbought = 70
	DefaultBandK         = 2
)

// DefaultSymbols is the watch list used when neither file, environment
// nor flags name one.
var DefaultSymbols = []string{"AAPL", "MSFT", "GOOGL"}

// ApplyDefaults fills every unset field with its default. Callers that
// overlay flags on top of a loaded config apply them before this so an
// explicit zero from the file still surfaces in validation.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), DefaultSymbols...)
	}

	// Provider endpoints
	if c.Finnhub.WSURL == "" {
		c.Finnhub.WSURL = DefaultFinnhubWSURL
	}
	if c.Polygon.WSURL == "" {
		c.Polygon.WSURL = DefaultPolygonWSURL
	}

	// Broker defaults
	if c.Broker.Capacity == 0 {
		c.Broker.Capacity = DefaultCapacity
	}
	if c.Broker.SortChunk == 0 {
		c.Broker.SortChunk = DefaultSortChunk
	}

	// Stats window defaults
	if c.Stats.Window.Kind == "" {
		c.Stats.Window.Kind = DefaultWindowKind
	}
	if c.Stats.Window.Size == 0 {
		c.Stats.Window.Size = DefaultWindowSize
	}
	if c.Stats.Window.Duration == 0 {
		c.Stats.Window.Duration = DefaultWindowSpan
	}

	// View defaults
	if c.View.MaxTrades == 0 {
		c.View.MaxTrades = DefaultMaxTrades
	}
	if c.View.Refresh == 0 {
		c.View.Refresh = DefaultRefresh
	}

	// Signal defaults
	if c.Signal.Interval == 0 {
		c.Signal.Interval = DefaultSignalPeriod
	}

	// Publisher defaults
	if c.Publish.NATS.URL == "" {
		c.Publish.NATS.URL = "nats://127.0.0.1:4222"
	}
	if c.Publish.NATS.SubjectPrefix == "" {
		c.Publish.NATS.SubjectPrefix = DefaultNATSSubject
	}
	if c.Publish.Redis.Addr == "" {
		c.Publish.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Publish.Redis.Channel == "" {
		c.Publish.Redis.Channel = DefaultRedisChannel
	}
	if c.Publish.Redis.FlushInterval == 0 {
		c.Publish.Redis.FlushInterval = DefaultRedisFlush
	}
	if c.Publish.Redis.BatchSize == 0 {
		c.Publish.Redis.BatchSize = DefaultRedisBatch
	}

	// Metrics defaults
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}

	// Indicator defaults
	for i := range c.Indicators {
		applyIndicatorDefaults(&c.Indicators[i])
	}
}

func applyIndicatorDefaults(ic *IndicatorConfig) {
	switch ic.Kind {
	case "rsi":
		if ic.Oversold == 0 {
			ic.Oversold = DefaultRSIOversold
		}
		if ic.Overbought == 0 {
			ic.Overbought = DefaultRSIOverbought
		}
	case "bollinger":
		if ic.BandK == 0 {
			ic.BandK = DefaultBandK
		}
	case "volatility":
		if ic.Method == "" {
			ic.Method = "stdDev"
		}
	}
}
