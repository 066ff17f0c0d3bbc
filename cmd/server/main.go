// Package main runs the wallet PnL dashboard server: balances and
// holdings from Solana RPC, market data from DexScreener, transaction
// history from a Helius-style indexer, all exposed as a JSON API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/dashboard"
	"solana-wallet-pnl/internal/dexscreener"
	"solana-wallet-pnl/internal/holdings"
	"solana-wallet-pnl/internal/indexer"
	"solana-wallet-pnl/internal/pricefeed"
	"solana-wallet-pnl/internal/server"
	"solana-wallet-pnl/internal/solana"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Flags override the environment
	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", cfg.RPCEndpoint, "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", cfg.WSEndpoint, "Solana WebSocket endpoint (empty disables push price updates)")
	flag.Parse()

	logger := log.New(os.Stdout, "[wallet-pnl] ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	dex := dexscreener.NewClient(dexscreener.WithLogger(logger))

	history := indexer.NewClient(cfg.IndexerAPIKey, indexerOpts(cfg, logger, 0, 0)...)
	guestHistory := indexer.NewClient(cfg.IndexerAPIKey,
		indexerOpts(cfg, logger, cfg.GuestSwapPages, cfg.GuestTransferPages)...)
	if !history.Enabled() {
		logger.Println("no indexer API key configured, PnL endpoints will return empty ledgers")
	}

	resolver := holdings.NewResolver(rpc, dex, logger)

	feedOpts := []pricefeed.Option{
		pricefeed.WithPollInterval(cfg.PollInterval),
		pricefeed.WithLogger(logger),
	}
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Printf("websocket unavailable, price feed will poll only: %v", err)
		} else {
			defer ws.Close()
			feedOpts = append(feedOpts, pricefeed.WithSubscriber(ws))
		}
	}
	feed := pricefeed.NewFeed(dex, feedOpts...)
	feed.Start(ctx)
	defer feed.Close()

	// Keep the primary wallet's holdings warm so the health gauge tracks
	// upstream availability even without request traffic.
	if cfg.PrimaryWallet != "" {
		go refreshLoop(ctx, resolver, cfg.PrimaryWallet, cfg.RefreshInterval, logger)
	}

	svc := dashboard.NewService(rpc, resolver, history, guestHistory, feed,
		dashboard.Config{
			PrimaryWallet: cfg.PrimaryWallet,
			HistoryStart:  cfg.HistoryStart,
			GoalSOL:       cfg.GoalSOL,
		}, logger)

	srv := server.New(*listenAddr, svc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("received %v, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("server: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	logger.Println("shutdown complete")
}

// refreshLoop periodically rebuilds the primary wallet's holdings.
func refreshLoop(ctx context.Context, resolver *holdings.Resolver, wallet string, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := resolver.Refresh(ctx, wallet); err != nil {
				logger.Printf("holdings refresh: %v", err)
			}
		}
	}
}

// indexerOpts assembles indexer client options; zero page limits keep
// the defaults.
func indexerOpts(cfg config.Config, logger *log.Logger, swapPages, transferPages int) []indexer.Option {
	opts := []indexer.Option{indexer.WithLogger(logger)}
	if cfg.IndexerBaseURL != "" {
		opts = append(opts, indexer.WithBaseURL(cfg.IndexerBaseURL))
	}
	if swapPages > 0 && transferPages > 0 {
		opts = append(opts, indexer.WithPageLimits(swapPages, transferPages))
	}
	return opts
}
