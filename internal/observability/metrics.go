// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Upstream request metrics
	RPCCallsTotal      *prometheus.CounterVec
	RPCCallLatency     *prometheus.HistogramVec
	DexRequestsTotal   *prometheus.CounterVec
	IndexerPagesTotal  *prometheus.CounterVec
	IndexerPageErrors  *prometheus.CounterVec

	// Price feed metrics
	PriceUpdatesTotal prometheus.Counter
	PriceFetchErrors  prometheus.Counter
	LastPriceUSD      prometheus.Gauge

	// Dashboard metrics
	PortfolioLoadsTotal   prometheus.Counter
	PnLComputationsTotal  prometheus.Counter
	ComparisonsTotal      prometheus.Counter
	PortfolioLoadDuration prometheus.Histogram

	// WebSocket metrics
	WSReconnectsTotal     prometheus.Counter
	WSNotificationsTotal  prometheus.Counter

	// Health metrics
	LastSuccessfulRefresh prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_pnl"
	}

	return &Metrics{
		RPCCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_calls_total",
			Help:      "Total number of Solana RPC calls by method and status",
		}, []string{"method", "status"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_duration_seconds",
			Help:      "Solana RPC call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		DexRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dexscreener",
			Name:      "requests_total",
			Help:      "Total number of market data requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		IndexerPagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "pages_fetched_total",
			Help:      "Total number of transaction history pages fetched by kind",
		}, []string{"kind"}),
		IndexerPageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "page_errors_total",
			Help:      "Total number of failed history page fetches by kind",
		}, []string{"kind"}),
		PriceUpdatesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "updates_total",
			Help:      "Total number of successful SOL price updates",
		}),
		PriceFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed SOL price fetches",
		}),
		LastPriceUSD: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "last_price_usd",
			Help:      "Last observed SOL price in USD",
		}),
		PortfolioLoadsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "portfolio_loads_total",
			Help:      "Total number of portfolio loads",
		}),
		PnLComputationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "pnl_computations_total",
			Help:      "Total number of cost-basis reconstructions",
		}),
		ComparisonsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "comparisons_total",
			Help:      "Total number of wallet comparisons",
		}),
		PortfolioLoadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "portfolio_load_duration_seconds",
			Help:      "End-to-end portfolio load latency",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		WSReconnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "reconnects_total",
			Help:      "Total number of WebSocket reconnect attempts",
		}),
		WSNotificationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "notifications_total",
			Help:      "Total number of account notifications received",
		}),
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful holdings refresh",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRPCCall records a Solana RPC call outcome and latency.
func RecordRPCCall(method, status string, seconds float64) {
	DefaultMetrics.RPCCallsTotal.WithLabelValues(method, status).Inc()
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDexRequest records a market data request outcome.
func RecordDexRequest(endpoint, status string) {
	DefaultMetrics.DexRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordIndexerPage records a fetched history page.
func RecordIndexerPage(kind string, err error) {
	DefaultMetrics.IndexerPagesTotal.WithLabelValues(kind).Inc()
	if err != nil {
		DefaultMetrics.IndexerPageErrors.WithLabelValues(kind).Inc()
	}
}

// RecordPriceUpdate records a SOL price update.
func RecordPriceUpdate(priceUSD float64) {
	DefaultMetrics.PriceUpdatesTotal.Inc()
	DefaultMetrics.LastPriceUSD.Set(priceUSD)
}

// RecordPriceFetchError records a failed SOL price fetch.
func RecordPriceFetchError() {
	DefaultMetrics.PriceFetchErrors.Inc()
}

// RecordPortfolioLoad records a completed portfolio load.
func RecordPortfolioLoad(seconds float64) {
	DefaultMetrics.PortfolioLoadsTotal.Inc()
	DefaultMetrics.PortfolioLoadDuration.Observe(seconds)
}

// RecordPnLComputation increments the cost-basis reconstruction counter.
func RecordPnLComputation() {
	DefaultMetrics.PnLComputationsTotal.Inc()
}

// RecordComparison increments the wallet comparison counter.
func RecordComparison() {
	DefaultMetrics.ComparisonsTotal.Inc()
}

// RecordWSReconnect increments the WebSocket reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnectsTotal.Inc()
}

// RecordWSNotification increments the account notification counter.
func RecordWSNotification() {
	DefaultMetrics.WSNotificationsTotal.Inc()
}

// RecordRefreshSuccess marks a successful holdings refresh.
func RecordRefreshSuccess(unixTime float64) {
	DefaultMetrics.LastSuccessfulRefresh.Set(unixTime)
}
