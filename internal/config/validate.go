package config

import (
	"errors"
	"fmt"
)

// Validate checks every field against its constraints and reports all
// violations at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case "finnhub", "polygon":
	default:
		errs = append(errs, fmt.Errorf("provider must be finnhub or polygon, got %q", c.Provider))
	}

	if len(c.Symbols) == 0 {
		errs = append(errs, errors.New("symbols must name at least one instrument"))
	}
	for _, s := range c.Symbols {
		if s == "" {
			errs = append(errs, errors.New("symbols must not contain empty entries"))
			break
		}
	}

	if c.Broker.Capacity < 1 {
		errs = append(errs, fmt.Errorf("broker.capacity must be >= 1, got %d", c.Broker.Capacity))
	}
	if c.Broker.SortChunk < 1 {
		errs = append(errs, fmt.Errorf("broker.sort_chunk must be >= 1, got %d", c.Broker.SortChunk))
	}

	errs = append(errs, c.Stats.Window.validate()...)

	if c.View.MaxTrades < 1 {
		errs = append(errs, fmt.Errorf("view.max_trades must be >= 1, got %d", c.View.MaxTrades))
	}
	if c.View.Refresh <= 0 {
		errs = append(errs, fmt.Errorf("view.refresh must be > 0, got %v", c.View.Refresh))
	}

	if c.Signal.Interval <= 0 {
		errs = append(errs, fmt.Errorf("signal.interval must be > 0, got %v", c.Signal.Interval))
	}

	for i := range c.Indicators {
		errs = append(errs, c.Indicators[i].validate(i)...)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}
	if c.Publish.NATS.Enabled && c.Publish.NATS.URL == "" {
		errs = append(errs, errors.New("publish.nats.url is required when the NATS sink is enabled"))
	}
	if c.Publish.Redis.Enabled && c.Publish.Redis.Addr == "" {
		errs = append(errs, errors.New("publish.redis.addr is required when the Redis sink is enabled"))
	}

	return errors.Join(errs...)
}

func (w WindowConfig) validate() []error {
	var errs []error
	switch w.Kind {
	case "event":
		if w.Size < 1 {
			errs = append(errs, fmt.Errorf("stats.window.size must be >= 1 for an event window, got %d", w.Size))
		}
	case "time":
		if w.Duration <= 0 {
			errs = append(errs, fmt.Errorf("stats.window.duration must be > 0 for a time window, got %v", w.Duration))
		}
	case "hybrid":
		if w.Size < 1 {
			errs = append(errs, fmt.Errorf("stats.window.size must be >= 1 for a hybrid window, got %d", w.Size))
		}
		if w.Duration <= 0 {
			errs = append(errs, fmt.Errorf("stats.window.duration must be > 0 for a hybrid window, got %v", w.Duration))
		}
	default:
		errs = append(errs, fmt.Errorf("stats.window.kind must be event, time or hybrid, got %q", w.Kind))
	}
	return errs
}

func (ic IndicatorConfig) validate(i int) []error {
	var errs []error
	prefix := fmt.Sprintf("indicators[%d]", i)

	switch ic.Kind {
	case "sma", "ema", "rsi":
		if ic.Period < 1 {
			errs = append(errs, fmt.Errorf("%s.period must be >= 1, got %d", prefix, ic.Period))
		}
	case "bollinger", "volatility":
		if ic.Period < 2 {
			errs = append(errs, fmt.Errorf("%s.period must be >= 2, got %d", prefix, ic.Period))
		}
	case "vwap":
	default:
		errs = append(errs, fmt.Errorf("%s.kind must be one of sma, ema, rsi, bollinger, vwap, volatility, got %q", prefix, ic.Kind))
		return errs
	}

	if ic.Kind == "rsi" {
		if ic.Oversold <= 0 || ic.Overbought >= 100 || ic.Oversold >= ic.Overbought {
			errs = append(errs, fmt.Errorf("%s levels must satisfy 0 < oversold < overbought < 100, got %v/%v",
				prefix, ic.Oversold, ic.Overbought))
		}
	}
	if ic.Kind == "bollinger" && ic.BandK <= 0 {
		errs = append(errs, fmt.Errorf("%s.band_k must be > 0, got %v", prefix, ic.BandK))
	}
	if ic.Kind == "volatility" {
		switch ic.Method {
		case "stdDev", "atr", "parkinson":
		default:
			errs = append(errs, fmt.Errorf("%s.method must be stdDev, atr or parkinson, got %q", prefix, ic.Method))
		}
		if ic.HighThreshold <= 0 {
			errs = append(errs, fmt.Errorf("%s.high_threshold must be > 0, got %v", prefix, ic.HighThreshold))
		}
	}
	return errs
}
