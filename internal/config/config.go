package config

import "time"

// Config is the root configuration for a stockstream instance.
type Config struct {
	Provider   string            `yaml:"provider"` // "finnhub" or "polygon"
	Symbols    []string          `yaml:"symbols"`
	Finnhub    FinnhubConfig     `yaml:"finnhub"`
	Polygon    PolygonConfig     `yaml:"polygon"`
	Broker     BrokerConfig      `yaml:"broker"`
	Stats      StatsConfig       `yaml:"stats"`
	View       ViewConfig        `yaml:"view"`
	Signal     SignalConfig      `yaml:"signal"`
	Indicators []IndicatorConfig `yaml:"indicators"`
	Publish    PublishConfig     `yaml:"publish"`
	Metrics    MetricsConfig     `yaml:"metrics"`
}

// FinnhubConfig holds Finnhub WebSocket settings.
type FinnhubConfig struct {
	WSURL string `yaml:"ws_url"`
	Token string `yaml:"token"`
}

// PolygonConfig holds Polygon WebSocket settings.
type PolygonConfig struct {
	WSURL  string `yaml:"ws_url"`
	APIKey string `yaml:"api_key"`
}

// BrokerConfig holds trade fan-out settings.
type BrokerConfig struct {
	Capacity        int  `yaml:"capacity"`          // per-subscriber queue capacity
	SortByTimestamp bool `yaml:"sort_by_timestamp"` // chronological re-ordering per chunk
	SortChunk       int  `yaml:"sort_chunk"`        // max chunk the sorter drains at once
}

// StatsConfig holds rolling statistics settings.
type StatsConfig struct {
	Window WindowConfig `yaml:"window"`
}

// WindowConfig selects the stats retention policy.
type WindowConfig struct {
	Kind     string        `yaml:"kind"`     // "event", "time" or "hybrid"
	Size     int           `yaml:"size"`     // event and hybrid
	Duration time.Duration `yaml:"duration"` // time and hybrid
}

// ViewConfig holds terminal view-model settings.
type ViewConfig struct {
	MaxTrades int           `yaml:"max_trades"`
	Refresh   time.Duration `yaml:"refresh"`
}

// SignalConfig holds consensus aggregation settings.
type SignalConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// IndicatorConfig declares one indicator instance. Symbol may be left
// empty to instantiate the indicator once per configured symbol.
type IndicatorConfig struct {
	Kind   string `yaml:"kind"` // sma, ema, rsi, bollinger, vwap, volatility
	Symbol string `yaml:"symbol"`
	Period int    `yaml:"period"`

	// RSI levels; zero means the standard 30/70.
	Oversold   float64 `yaml:"oversold"`
	Overbought float64 `yaml:"overbought"`

	// Bollinger band width in standard deviations; zero means 2.
	BandK float64 `yaml:"band_k"`

	// VWAP session reset on source-timestamp day change.
	ResetDaily bool `yaml:"reset_daily"`

	// Volatility estimator and alert level.
	Method        string  `yaml:"method"` // stdDev, atr, parkinson
	HighThreshold float64 `yaml:"high_threshold"`
}

// PublishConfig holds the downstream broadcast sinks.
type PublishConfig struct {
	NATS  NATSPublishConfig  `yaml:"nats"`
	Redis RedisPublishConfig `yaml:"redis"`
}

// NATSPublishConfig holds the NATS sink settings.
type NATSPublishConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// RedisPublishConfig holds the Redis sink settings.
type RedisPublishConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Addr          string        `yaml:"addr"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	Channel       string        `yaml:"channel"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BatchSize     int           `yaml:"batch_size"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}
