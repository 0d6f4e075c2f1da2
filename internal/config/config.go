// Package config loads process configuration from the environment. No
// dedicated config library appears as a direct dependency anywhere in the
// reference corpus this module was built from, so this stays on the
// standard library by necessity rather than preference (see DESIGN.md).
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds everything cmd/server/main.go needs to wire the process.
type Config struct {
	Addr                 string   // REST + websocket listen address
	Symbols              []string // registry's fixed symbol set
	SnapshotDepthDefault int
	TradeHistoryCapacity int // per-book ring buffer size
	RecentTradesDefault  int
	LogLevel             string
}

// Load reads Config from the environment, applying sane defaults for
// anything unset.
func Load() Config {
	return Config{
		Addr:                 getEnv("ADDR", ":8080"),
		Symbols:              splitSymbols(getEnv("SYMBOLS", "BTCUSD,ETHUSD")),
		SnapshotDepthDefault: getEnvInt("SNAPSHOT_DEPTH_DEFAULT", 10),
		TradeHistoryCapacity: getEnvInt("TRADE_HISTORY_CAPACITY", 4096),
		RecentTradesDefault:  getEnvInt("RECENT_TRADES_DEFAULT", 200),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
