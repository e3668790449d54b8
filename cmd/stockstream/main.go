// Command stockstream streams live stock trades from a market data
// provider, maintains rolling per-symbol statistics and indicators, and
// renders them as a terminal dashboard. Trades can additionally be
// forwarded to NATS and Redis, and Prometheus metrics exposed over HTTP.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present. Missing files are the normal case outside
	// development, so the error is ignored.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
