package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCEndpoint != DefaultRPCEndpoint {
		t.Errorf("rpc = %s", cfg.RPCEndpoint)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("pollInterval = %v", cfg.PollInterval)
	}
	if cfg.GuestSwapPages != DefaultGuestSwapPages || cfg.GuestTransferPages != DefaultGuestTransferPages {
		t.Errorf("guest pages = %d/%d", cfg.GuestSwapPages, cfg.GuestTransferPages)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SOLANA_RPC_ENDPOINT", "https://rpc.example.com")
	t.Setenv("PRICE_POLL_INTERVAL", "45s")
	t.Setenv("HISTORY_START", "2026-03-01T00:00:00Z")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCEndpoint != "https://rpc.example.com" {
		t.Errorf("rpc = %s", cfg.RPCEndpoint)
	}
	if cfg.PollInterval != 45*time.Second {
		t.Errorf("pollInterval = %v", cfg.PollInterval)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.HistoryStart.Equal(want) {
		t.Errorf("historyStart = %v", cfg.HistoryStart)
	}
}

func TestLoad_InvalidWallet(t *testing.T) {
	t.Setenv("PRIMARY_WALLET", "not-a-wallet")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid wallet")
	}
}

func TestLoad_InvalidHistoryStart(t *testing.T) {
	t.Setenv("HISTORY_START", "02/06/2026")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed HISTORY_START")
	}
}
