// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"solana-wallet-pnl/internal/wallet"
)

// Defaults for optional settings.
const (
	DefaultRPCEndpoint = "https://api.mainnet-beta.solana.com"
	DefaultWSEndpoint  = "wss://api.mainnet-beta.solana.com"
	DefaultListenAddr  = ":8080"

	DefaultPollInterval    = 20 * time.Second
	DefaultRefreshInterval = 5 * time.Minute

	// DefaultGoalSOL is the balance target for goal progress display.
	DefaultGoalSOL = 10_000

	// Guest wallets get a shallower history walk than the primary wallet.
	DefaultGuestSwapPages     = 4
	DefaultGuestTransferPages = 2
)

// DefaultHistoryStart anchors the reconstructed time series.
var DefaultHistoryStart = time.Date(2026, 2, 6, 4, 0, 0, 0, time.UTC)

// Config holds all server settings.
type Config struct {
	RPCEndpoint string
	WSEndpoint  string

	// IndexerAPIKey enables transaction history; empty disables PnL.
	IndexerAPIKey  string
	IndexerBaseURL string

	// PrimaryWallet is the dashboard's own wallet.
	PrimaryWallet string

	ListenAddr string

	PollInterval    time.Duration
	RefreshInterval time.Duration

	HistoryStart time.Time
	GoalSOL      float64

	GuestSwapPages     int
	GuestTransferPages int
}

// Load reads configuration from the environment. A .env file in the
// working directory, if present, fills in unset variables first.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RPCEndpoint:        envStr("SOLANA_RPC_ENDPOINT", DefaultRPCEndpoint),
		WSEndpoint:         envStr("SOLANA_WS_ENDPOINT", DefaultWSEndpoint),
		IndexerAPIKey:      os.Getenv("HELIUS_API_KEY"),
		IndexerBaseURL:     os.Getenv("HELIUS_API_URL"),
		PrimaryWallet:      os.Getenv("PRIMARY_WALLET"),
		ListenAddr:         envStr("LISTEN_ADDR", DefaultListenAddr),
		PollInterval:       envDuration("PRICE_POLL_INTERVAL", DefaultPollInterval),
		RefreshInterval:    envDuration("HOLDINGS_REFRESH_INTERVAL", DefaultRefreshInterval),
		HistoryStart:       DefaultHistoryStart,
		GoalSOL:            envFloat("GOAL_SOL", DefaultGoalSOL),
		GuestSwapPages:     envInt("GUEST_SWAP_PAGES", DefaultGuestSwapPages),
		GuestTransferPages: envInt("GUEST_TRANSFER_PAGES", DefaultGuestTransferPages),
	}

	if raw := os.Getenv("HISTORY_START"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse HISTORY_START: %w", err)
		}
		cfg.HistoryStart = ts
	}

	if cfg.PrimaryWallet != "" {
		if err := wallet.Validate(cfg.PrimaryWallet); err != nil {
			return Config{}, fmt.Errorf("PRIMARY_WALLET: %w", err)
		}
	}

	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
