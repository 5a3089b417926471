// File: internal/pricing/aggregator.go
package pricing

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator fans a product query out to every configured source and fuses
// the survivors into one estimate.
//
// Fusion rule: each source is first reduced to its own mean, then the fused
// value is the unweighted mean of those per-source means. A source with fifty
// listings and a source with one contribute exactly one value each. Pooling
// all raw prices into a single mean was considered and rejected: it lets the
// chattiest marketplace drown out the others.
type Aggregator struct {
	sources []Source
	logger  *zap.Logger
}

// NewAggregator wires the adapters. Order is irrelevant; results are
// order-insensitive.
func NewAggregator(logger *zap.Logger, sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  logger.Named("aggregator"),
	}
}

// Aggregate queries all sources concurrently and joins their results. Any
// adapter failure, including the zero-quote outcome, is tolerated: the source
// is excluded from the fused result and nothing propagates past this
// boundary. When no source contributes, the error is ErrUnavailable.
func (a *Aggregator) Aggregate(ctx context.Context, product string) (AggregatedPrice, error) {
	type contribution struct {
		source string
		mean   float64
		ok     bool
	}

	contributions := make([]contribution, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range a.sources {
		g.Go(func() error {
			quotes, err := src.Quotes(gctx, product)
			if err != nil {
				a.logFailure(src.Name(), product, err)
				return nil
			}
			if len(quotes) == 0 {
				a.logger.Debug("Source returned no quotes.",
					zap.String("source", src.Name()),
					zap.String("product", product))
				return nil
			}
			var sum float64
			for _, q := range quotes {
				sum += q.Price
			}
			contributions[i] = contribution{
				source: src.Name(),
				mean:   sum / float64(len(quotes)),
				ok:     true,
			}
			return nil
		})
	}
	// Goroutines only ever return nil; Wait is a join, not an error gate.
	g.Wait()

	var (
		sum     float64
		sources []string
	)
	for _, c := range contributions {
		if !c.ok {
			continue
		}
		sum += c.mean
		sources = append(sources, c.source)
	}

	if len(sources) == 0 {
		if err := ctx.Err(); err != nil {
			return AggregatedPrice{}, err
		}
		return AggregatedPrice{}, ErrUnavailable
	}
	sort.Strings(sources)

	fused := AggregatedPrice{
		Value:       sum / float64(len(sources)),
		Sources:     sources,
		SourceCount: len(sources),
	}
	a.logger.Debug("Fused price estimate.",
		zap.String("product", product),
		zap.Float64("value", fused.Value),
		zap.Strings("sources", fused.Sources))
	return fused, nil
}

// logFailure records an excluded source at low severity, keeping the
// transport/structure distinction visible in the logs.
func (a *Aggregator) logFailure(source, product string, err error) {
	kind := "unknown"
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		kind = srcErr.Kind.String()
	}
	a.logger.Debug("Source excluded from aggregation.",
		zap.String("source", source),
		zap.String("product", product),
		zap.String("kind", kind),
		zap.Error(err))
}
