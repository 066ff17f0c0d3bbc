// Package dashboard orchestrates the wallet dashboard: it combines
// balances, holdings, market data and transaction history into the
// portfolio, PnL and comparison views served to the presentation layer.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"solana-wallet-pnl/internal/costbasis"
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/pnl"
	"solana-wallet-pnl/internal/snapshot"
	"solana-wallet-pnl/internal/wallet"
)

// BalanceSource fetches native balances.
type BalanceSource interface {
	GetSOLBalance(ctx context.Context, address string) (float64, error)
}

// HoldingsSource rebuilds enriched holdings.
type HoldingsSource interface {
	Refresh(ctx context.Context, wallet string) ([]domain.EnrichedToken, error)
	RefreshPrices(ctx context.Context, tokens []domain.EnrichedToken) []domain.EnrichedToken
}

// HistorySource fetches transaction history for the cost-basis rebuild.
type HistorySource interface {
	Swaps(ctx context.Context, wallet string) ([]domain.SwapTransaction, error)
	Transfers(ctx context.Context, wallet string) ([]domain.TransferTransaction, error)
	Enabled() bool
}

// PriceReader reads the current native price quote.
type PriceReader interface {
	Current() domain.QuotedPrice
}

// Portfolio is the single-wallet dashboard view.
type Portfolio struct {
	Wallet        string                   `json:"wallet"`
	ShortWallet   string                   `json:"shortWallet"`
	NativeBalance float64                  `json:"nativeBalance"`
	NativePrice   domain.QuotedPrice       `json:"nativePrice"`
	Tokens        []domain.EnrichedToken   `json:"tokens"`
	Snapshot      domain.PortfolioSnapshot `json:"snapshot"`
	GoalPct       float64                  `json:"goalPct"`
	PayURL        string                   `json:"payUrl"`
}

// PnLReport is the cost-basis view of one wallet.
type PnLReport struct {
	Wallet  string                            `json:"wallet"`
	Summary pnl.Summary                       `json:"summary"`
	Entries map[string]*domain.CostBasisEntry `json:"entries"`
}

// Config carries the service's tunables.
type Config struct {
	// PrimaryWallet gets the full-depth history walk; other wallets use
	// the guest history source.
	PrimaryWallet string
	HistoryStart  time.Time
	GoalSOL       float64
}

// Service is the dashboard orchestrator.
type Service struct {
	balances     BalanceSource
	holdings     HoldingsSource
	history      HistorySource
	guestHistory HistorySource
	price        PriceReader
	cfg          Config
	logger       *log.Logger
}

// NewService creates a dashboard service. guestHistory may equal history
// when no shallower guest walk is wanted.
func NewService(balances BalanceSource, holdings HoldingsSource, history, guestHistory HistorySource, price PriceReader, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if guestHistory == nil {
		guestHistory = history
	}
	return &Service{
		balances:     balances,
		holdings:     holdings,
		history:      history,
		guestHistory: guestHistory,
		price:        price,
		cfg:          cfg,
		logger:       logger,
	}
}

// historyFor picks the history depth for a wallet.
func (s *Service) historyFor(addr string) HistorySource {
	if addr == s.cfg.PrimaryWallet {
		return s.history
	}
	return s.guestHistory
}

// LoadPortfolio rebuilds a wallet's portfolio view from live queries.
// The balance fetch failing fails the whole load; holdings and market
// data degrade internally.
func (s *Service) LoadPortfolio(ctx context.Context, addr string) (*Portfolio, error) {
	if err := wallet.Validate(addr); err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}

	start := time.Now()

	var (
		balance float64
		tokens  []domain.EnrichedToken
		balErr  error
		tokErr  error
		wg      sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		balance, balErr = s.balances.GetSOLBalance(ctx, addr)
	}()
	go func() {
		defer wg.Done()
		tokens, tokErr = s.holdings.Refresh(ctx, addr)
	}()
	wg.Wait()

	if balErr != nil {
		return nil, fmt.Errorf("balance for %s: %w", wallet.Short(addr), balErr)
	}
	if tokErr != nil {
		// Balance alone still renders a useful portfolio.
		s.logger.Printf("[dashboard] holdings for %s unavailable: %v", wallet.Short(addr), tokErr)
		tokens = nil
	}

	quote := s.price.Current()
	p := &Portfolio{
		Wallet:        addr,
		ShortWallet:   wallet.Short(addr),
		NativeBalance: balance,
		NativePrice:   quote,
		Tokens:        tokens,
		Snapshot:      snapshot.Build(tokens, balance, quote),
		PayURL:        wallet.PayURL(addr, 0),
	}
	if s.cfg.GoalSOL > 0 {
		p.GoalPct = balance / s.cfg.GoalSOL * 100
	}

	observability.RecordPortfolioLoad(time.Since(start).Seconds())
	return p, nil
}

// LoadPnL rebuilds a wallet's cost basis from a full history re-scan.
// Swap and transfer walks share no cursor, so they run concurrently;
// pages within each walk stay sequential.
func (s *Service) LoadPnL(ctx context.Context, addr string, tokens []domain.EnrichedToken) (*PnLReport, error) {
	if err := wallet.Validate(addr); err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}

	source := s.historyFor(addr)

	var (
		swaps     []domain.SwapTransaction
		transfers []domain.TransferTransaction
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		if swaps, err = source.Swaps(ctx, addr); err != nil {
			s.logger.Printf("[dashboard] swap history for %s: %v", wallet.Short(addr), err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if transfers, err = source.Transfers(ctx, addr); err != nil {
			s.logger.Printf("[dashboard] transfer history for %s: %v", wallet.Short(addr), err)
		}
	}()
	wg.Wait()

	ledger := costbasis.Build(swaps, transfers, addr)
	return &PnLReport{
		Wallet:  addr,
		Summary: pnl.Summarize(ledger, tokens),
		Entries: ledger,
	}, nil
}

// History reconstructs the wallet's valuation time series at current
// prices.
func (s *Service) History(ctx context.Context, addr string) ([]domain.ValuationPoint, error) {
	p, err := s.LoadPortfolio(ctx, addr)
	if err != nil {
		return nil, err
	}
	report, err := s.LoadPnL(ctx, addr, p.Tokens)
	if err != nil {
		return nil, err
	}

	return pnl.BuildTimeSeries(report.Entries, p.Tokens, p.NativeBalance,
		s.cfg.HistoryStart.Unix(), time.Now().Unix()), nil
}

// walletStanding loads everything the comparison needs for one wallet.
func (s *Service) walletStanding(ctx context.Context, addr string) (snapshot.WalletStanding, error) {
	p, err := s.LoadPortfolio(ctx, addr)
	if err != nil {
		return snapshot.WalletStanding{}, err
	}

	standing := snapshot.WalletStanding{Snapshot: p.Snapshot}

	if s.historyFor(addr).Enabled() {
		report, err := s.LoadPnL(ctx, addr, p.Tokens)
		if err == nil && len(report.Entries) > 0 {
			standing.RealizedPnL = report.Summary.NetRealized
			standing.TokensTraded = report.Summary.TokensTraded
			standing.HasPnL = true
		}
	}
	return standing, nil
}

// Compare runs a head-to-head between two wallets. The wallets share no
// cursor state and load concurrently; either side failing fails the
// comparison as a whole.
func (s *Service) Compare(ctx context.Context, baseAddr, otherAddr string) (*domain.ComparisonResult, error) {
	var (
		base, other       snapshot.WalletStanding
		baseErr, otherErr error
		wg                sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		base, baseErr = s.walletStanding(ctx, baseAddr)
	}()
	go func() {
		defer wg.Done()
		other, otherErr = s.walletStanding(ctx, otherAddr)
	}()
	wg.Wait()

	if baseErr != nil {
		return nil, baseErr
	}
	if otherErr != nil {
		return nil, otherErr
	}

	result := snapshot.Compare(base, other)
	observability.RecordComparison()
	return &result, nil
}

// RefreshPrices updates price fields on already-loaded holdings without
// re-walking token accounts.
func (s *Service) RefreshPrices(ctx context.Context, tokens []domain.EnrichedToken) []domain.EnrichedToken {
	return s.holdings.RefreshPrices(ctx, tokens)
}
