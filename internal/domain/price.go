package domain

import "time"

// QuotedPrice is a versioned price observation. The price feed is the only
// writer; aggregation reads it as an explicit value instead of a shared
// global, and callers decide how much staleness they tolerate.
type QuotedPrice struct {
	Price float64   `json:"price"` // USD per SOL
	AsOf  time.Time `json:"asOf"`
}

// Valid reports whether a price was ever observed.
func (q QuotedPrice) Valid() bool {
	return q.Price > 0 && !q.AsOf.IsZero()
}

// StalerThan reports whether the observation is older than maxAge.
func (q QuotedPrice) StalerThan(maxAge time.Duration) bool {
	return q.AsOf.IsZero() || time.Since(q.AsOf) > maxAge
}
