// File: internal/pricing/aggregator_test.go
package pricing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubSource is a scriptable in-memory Source.
type stubSource struct {
	name   string
	prices []float64
	err    error
	delay  time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Quotes(ctx context.Context, product string) ([]PriceQuote, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	var quotes []PriceQuote
	for _, p := range s.prices {
		quotes = append(quotes, PriceQuote{Source: s.name, Price: p})
	}
	return quotes, nil
}

func newTestAggregator(srcs ...Source) *Aggregator {
	return NewAggregator(zap.NewNop(), srcs...)
}

func TestAggregateMeanOfPerSourceMeans(t *testing.T) {
	// eBay=[10.00, 12.00] -> 11.00, Amazon=[11.50] -> 11.50, TCGPlayer=[] ->
	// excluded. Fused: (11.00 + 11.50) / 2 = 11.25.
	agg := newTestAggregator(
		&stubSource{name: "ebay", prices: []float64{10.00, 12.00}},
		&stubSource{name: "amazon", prices: []float64{11.50}},
		&stubSource{name: "tcgplayer"},
	)

	got, err := agg.Aggregate(context.Background(), "charizard holo")

	require.NoError(t, err)
	assert.InDelta(t, 11.25, got.Value, 1e-9)
	assert.Equal(t, 2, got.SourceCount)
	assert.Equal(t, []string{"amazon", "ebay"}, got.Sources)
}

func TestAggregateEqualWeightRegardlessOfListingCount(t *testing.T) {
	// Fifty listings on one source must not outvote a single listing on the
	// other: each source contributes exactly one representative value.
	noisy := &stubSource{name: "ebay"}
	for i := 0; i < 50; i++ {
		noisy.prices = append(noisy.prices, 100.0)
	}
	quiet := &stubSource{name: "amazon", prices: []float64{50.0}}

	got, err := newTestAggregator(noisy, quiet).Aggregate(context.Background(), "anything")

	require.NoError(t, err)
	assert.InDelta(t, 75.0, got.Value, 1e-9)
	assert.Equal(t, 2, got.SourceCount)
}

func TestAggregateSingleContributor(t *testing.T) {
	agg := newTestAggregator(
		&stubSource{name: "ebay", err: &SourceError{Source: "ebay", Kind: KindTransport, Err: errors.New("dial tcp: timeout")}},
		&stubSource{name: "amazon", prices: []float64{19.99}},
	)

	got, err := agg.Aggregate(context.Background(), "boxed lego set")

	require.NoError(t, err)
	assert.InDelta(t, 19.99, got.Value, 1e-9)
	assert.Equal(t, 1, got.SourceCount)
	assert.Equal(t, []string{"amazon"}, got.Sources)
}

func TestAggregateUnavailableWhenAllSourcesEmptyOrFailing(t *testing.T) {
	testCases := []struct {
		name    string
		sources []Source
	}{
		{"all empty", []Source{
			&stubSource{name: "ebay"},
			&stubSource{name: "amazon"},
		}},
		{"all failing", []Source{
			&stubSource{name: "ebay", err: &SourceError{Source: "ebay", Kind: KindTransport, Err: errors.New("503")}},
			&stubSource{name: "amazon", err: &SourceError{Source: "amazon", Kind: KindStructure, Err: errors.New("markup changed")}},
		}},
		{"mixed empty and failing", []Source{
			&stubSource{name: "ebay"},
			&stubSource{name: "amazon", err: fmt.Errorf("unclassified boom")},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := newTestAggregator(tc.sources...).Aggregate(context.Background(), "nothing sells")

			require.ErrorIs(t, err, ErrUnavailable)
			// The zero value must never be mistaken for a price.
			assert.Zero(t, got.SourceCount)
			assert.Empty(t, got.Sources)
		})
	}
}

func TestAggregateNoSourcesConfigured(t *testing.T) {
	_, err := newTestAggregator().Aggregate(context.Background(), "anything")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestAggregateConcurrentSourcesAllJoined(t *testing.T) {
	// Slow sources still contribute; Aggregate joins all of them.
	agg := newTestAggregator(
		&stubSource{name: "ebay", prices: []float64{10}, delay: 30 * time.Millisecond},
		&stubSource{name: "amazon", prices: []float64{20}, delay: 10 * time.Millisecond},
		&stubSource{name: "tcgplayer", prices: []float64{30}},
	)

	got, err := agg.Aggregate(context.Background(), "three way")

	require.NoError(t, err)
	assert.InDelta(t, 20.0, got.Value, 1e-9)
	assert.Equal(t, 3, got.SourceCount)
}

func TestAggregateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := newTestAggregator(
		&stubSource{name: "ebay", prices: []float64{10}, delay: time.Second},
	)

	_, err := agg.Aggregate(ctx, "anything")
	require.ErrorIs(t, err, context.Canceled)
}

func TestAggregatedPriceInvariant(t *testing.T) {
	agg := newTestAggregator(
		&stubSource{name: "ebay", prices: []float64{5}},
		&stubSource{name: "amazon", prices: []float64{15}},
	)

	got, err := agg.Aggregate(context.Background(), "pair")

	require.NoError(t, err)
	assert.Equal(t, len(got.Sources), got.SourceCount)
	assert.GreaterOrEqual(t, got.SourceCount, 1)
}
