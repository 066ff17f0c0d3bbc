// Package pricefeed maintains the current SOL/USD price as a versioned
// quote. A periodic poll is the baseline; an optional account
// subscription on the wrapped-SOL mint triggers early re-polls when the
// market moves. Consumers read an explicit quote value and judge
// staleness themselves.
package pricefeed

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/solana"
)

// DefaultPollInterval matches the dashboard's refresh cadence.
const DefaultPollInterval = 20 * time.Second

// PriceSource fetches the current native price.
type PriceSource interface {
	NativePrice(ctx context.Context) (domain.QuotedPrice, error)
}

// Subscriber provides push notifications for account changes.
type Subscriber interface {
	SubscribeAccount(ctx context.Context, pubkey string) (<-chan solana.AccountNotification, error)
}

// Feed polls the price source and caches the latest quote.
type Feed struct {
	source     PriceSource
	subscriber Subscriber // optional
	interval   time.Duration
	logger     *log.Logger

	mu      sync.RWMutex
	current domain.QuotedPrice

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures the Feed.
type Option func(*Feed)

// WithPollInterval overrides the poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(f *Feed) {
		f.interval = d
	}
}

// WithSubscriber attaches a push source that triggers early re-polls.
func WithSubscriber(s Subscriber) Option {
	return func(f *Feed) {
		f.subscriber = s
	}
}

// WithLogger sets the feed logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// NewFeed creates a price feed. Call Start to begin polling.
func NewFeed(source PriceSource, opts ...Option) *Feed {
	f := &Feed{
		source:   source,
		interval: DefaultPollInterval,
		logger:   log.New(io.Discard, "", 0),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start fetches an initial quote and launches the background poll loop.
// The initial fetch failing is not fatal; the loop keeps trying.
func (f *Feed) Start(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)

	f.poll(ctx)

	var ticks <-chan solana.AccountNotification
	if f.subscriber != nil {
		ch, err := f.subscriber.SubscribeAccount(ctx, domain.WrappedSOLMint)
		if err != nil {
			f.logger.Printf("[pricefeed] account subscription unavailable, poll only: %v", err)
		} else {
			ticks = ch
		}
	}

	go f.loop(ctx, ticks)
}

// Close stops the poll loop. Safe to call only after Start.
func (f *Feed) Close() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
}

// Current returns the latest quote. The zero value means no price was
// ever observed.
func (f *Feed) Current() domain.QuotedPrice {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

func (f *Feed) loop(ctx context.Context, ticks <-chan solana.AccountNotification) {
	defer close(f.done)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.poll(ctx)
		case _, ok := <-ticks:
			if !ok {
				ticks = nil
				continue
			}
			f.poll(ctx)
			ticker.Reset(f.interval)
		}
	}
}

// poll fetches a fresh quote. A failed fetch keeps the last known quote;
// the next cycle retries.
func (f *Feed) poll(ctx context.Context) {
	quote, err := f.source.NativePrice(ctx)
	if err != nil {
		observability.RecordPriceFetchError()
		f.logger.Printf("[pricefeed] price fetch failed: %v", err)
		return
	}

	f.mu.Lock()
	f.current = quote
	f.mu.Unlock()

	observability.RecordPriceUpdate(quote.Price)
}
