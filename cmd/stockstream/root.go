package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/front-depiction/cli-stock/internal/config"
	"github.com/front-depiction/cli-stock/internal/pipeline"
	"github.com/front-depiction/cli-stock/internal/version"
)

// rootCmd runs the streaming pipeline until the stream ends or the
// process receives SIGINT/SIGTERM. Ctrl-C is the normal way out.
var rootCmd = &cobra.Command{
	Use:   "stockstream",
	Short: "Stream real-time stock trades with rolling statistics and signals",
	Long: `Stream real-time trades from Finnhub or Polygon, maintain windowed
per-symbol statistics and technical indicators, and render them as a
terminal dashboard. Press Ctrl-C to exit.

Settings resolve in order: flags, then environment variables
(MARKET_DATA_PROVIDER, FINNHUB_TOKEN, FINNHUB_WS_URL, POLYGON_API_KEY,
POLYGON_WS_URL, SYMBOLS), then the --config file, then built-in
defaults. A .env file in the working directory is loaded if present.`,
	SilenceUsage: true,
	RunE:         runStream,
}

// versionCmd prints the build metadata stamped in via ldflags.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "stockstream "+version.String())
	},
}

func init() {
	registerStreamFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
}

// registerStreamFlags declares the streaming flags on cmd. Split out so
// tests can build throwaway commands with the same flag set.
func registerStreamFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "path to a YAML config file")
	f.String("provider", "", "market data provider (finnhub or polygon)")
	f.String("token", "", "provider credential (Finnhub token or Polygon API key)")
	f.String("url", "", "provider websocket URL override")
	f.String("symbol", "", "comma-separated symbols to stream (e.g. AAPL,MSFT)")
	f.Int("max-trades", 0, "recent trades kept in the dashboard")
	f.Int("window-size", 0, "statistics window size in trades")
	f.Bool("enhanced-metrics", false, "show volatility, momentum, velocity, spread and VWAP columns")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cmd)
	if err != nil {
		return err
	}

	enhanced, _ := cmd.Flags().GetBool("enhanced-metrics")
	renderer := newRenderer(cmd.OutOrStdout(), enhanced)

	p, err := pipeline.New(cfg, renderer, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting stream, press Ctrl-C to exit",
		"provider", cfg.Provider,
		"symbols", cfg.Symbols)

	if err := p.Run(ctx); err != nil {
		return err
	}

	logger.Info("stream closed")
	return nil
}

// resolveConfig builds the effective config from, in ascending
// precedence, defaults, the --config file, environment variables, and
// explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()

	cfg := &config.Config{}
	if path, _ := f.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.FromEnv()

	if f.Changed("provider") {
		cfg.Provider, _ = f.GetString("provider")
	}
	if f.Changed("symbol") {
		raw, _ := f.GetString("symbol")
		if symbols := config.SplitSymbols(raw); len(symbols) > 0 {
			cfg.Symbols = symbols
		}
	}
	if f.Changed("max-trades") {
		cfg.View.MaxTrades, _ = f.GetInt("max-trades")
	}
	if f.Changed("window-size") {
		cfg.Stats.Window.Size, _ = f.GetInt("window-size")
	}

	// --token and --url belong to whichever provider is active, so they
	// overlay after the provider itself is settled.
	provider := cfg.Provider
	if provider == "" {
		provider = config.DefaultProvider
	}
	if f.Changed("token") {
		token, _ := f.GetString("token")
		switch provider {
		case "polygon":
			cfg.Polygon.APIKey = token
		default:
			cfg.Finnhub.Token = token
		}
	}
	if f.Changed("url") {
		url, _ := f.GetString("url")
		switch provider {
		case "polygon":
			cfg.Polygon.WSURL = url
		default:
			cfg.Finnhub.WSURL = url
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildLogger configures the process logger. Logs go to stderr because
// the renderer owns stdout.
func buildLogger(cmd *cobra.Command) (*slog.Logger, error) {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := parseLogLevel(raw)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", raw, err)
	}
	return level, nil
}
