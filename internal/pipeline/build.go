package pipeline

import (
	"fmt"

	"github.com/front-depiction/cli-stock/internal/config"
	"github.com/front-depiction/cli-stock/internal/indicator"
	"github.com/front-depiction/cli-stock/internal/model"
	"github.com/front-depiction/cli-stock/internal/provider"
	"github.com/front-depiction/cli-stock/internal/stats"
)

// buildProvider constructs the configured market-data provider.
func buildProvider(cfg *config.Config, opts ...provider.Option) (provider.Provider, error) {
	switch cfg.Provider {
	case "finnhub":
		return provider.NewFinnhub(cfg.Finnhub.WSURL, cfg.Finnhub.Token, opts...), nil
	case "polygon":
		return provider.NewPolygon(cfg.Polygon.WSURL, cfg.Polygon.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("pipeline: unknown provider %q", cfg.Provider)
	}
}

// buildWindow maps the window config onto a validated stats policy.
func buildWindow(wc config.WindowConfig) (stats.Window, error) {
	switch wc.Kind {
	case "event":
		return stats.NewEventWindow(wc.Size)
	case "time":
		return stats.NewTimeWindow(wc.Duration)
	case "hybrid":
		return stats.NewHybridWindow(wc.Size, wc.Duration)
	default:
		return stats.Window{}, fmt.Errorf("pipeline: unknown window kind %q", wc.Kind)
	}
}

// buildIndicators expands the indicator declarations into instances.
// A declaration without a symbol is instantiated once per configured
// symbol.
func buildIndicators(cfg *config.Config) ([]indicator.Indicator, error) {
	var out []indicator.Indicator
	for i, ic := range cfg.Indicators {
		symbols := []string{ic.Symbol}
		if ic.Symbol == "" {
			symbols = cfg.Symbols
		}
		for _, sym := range symbols {
			ind, err := buildIndicator(ic, model.Symbol(sym))
			if err != nil {
				return nil, fmt.Errorf("pipeline: indicators[%d]: %w", i, err)
			}
			out = append(out, ind)
		}
	}
	return out, nil
}

func buildIndicator(ic config.IndicatorConfig, sym model.Symbol) (indicator.Indicator, error) {
	switch ic.Kind {
	case "sma":
		return indicator.NewSMA(sym, ic.Period)
	case "ema":
		return indicator.NewEMA(sym, ic.Period)
	case "rsi":
		if ic.Oversold == 0 && ic.Overbought == 0 {
			return indicator.NewRSI(sym, ic.Period)
		}
		return indicator.NewRSIWithLevels(sym, ic.Period, ic.Oversold, ic.Overbought)
	case "bollinger":
		if ic.BandK == 0 {
			return indicator.NewBollinger(sym, ic.Period)
		}
		return indicator.NewBollingerWithK(sym, ic.Period, ic.BandK)
	case "vwap":
		return indicator.NewVWAP(sym, ic.ResetDaily)
	case "volatility":
		return indicator.NewVolatility(sym, ic.Period, indicator.Method(ic.Method), ic.HighThreshold)
	default:
		return nil, fmt.Errorf("unknown indicator kind %q", ic.Kind)
	}
}
