// File: internal/pricing/pricing.go
// Core types for the price aggregation engine. A run produces ephemeral
// PriceQuotes per marketplace which are fused into one AggregatedPrice; when
// no marketplace contributes, the result is an explicit absence, never a
// sentinel number.
package pricing

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned by Aggregate when no source contributed a usable
// price. Callers must branch on it; a missing price is not zero.
var ErrUnavailable = errors.New("no market price available")

// PriceQuote is one extracted listing price. Currency is implicitly USD.
type PriceQuote struct {
	Source string
	Price  float64
}

// AggregatedPrice is the fused estimate with provenance.
// Invariant: SourceCount == len(Sources) >= 1.
type AggregatedPrice struct {
	Value       float64
	Sources     []string
	SourceCount int
}

// FailureKind classifies why a source produced no data.
type FailureKind int

const (
	// KindTransport covers network-level failures: non-2xx status, timeout,
	// DNS, navigation failure.
	KindTransport FailureKind = iota
	// KindStructure covers parse-level failures: the page loaded but its
	// markup no longer matches the selector table.
	KindStructure
)

func (k FailureKind) String() string {
	if k == KindTransport {
		return "transport"
	}
	return "structure"
}

// SourceError is a classified adapter failure. Both kinds fold to "no data
// from this source" at the aggregator boundary but are logged distinctly.
type SourceError struct {
	Source string
	Kind   FailureKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Source is one marketplace adapter. Quotes returns every extracted price for
// the product query; zero results is a valid outcome (empty slice, nil error),
// not an error.
type Source interface {
	Name() string
	Quotes(ctx context.Context, product string) ([]PriceQuote, error)
}
