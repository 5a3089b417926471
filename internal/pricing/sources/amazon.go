// File: internal/pricing/sources/amazon.go
package sources

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/pricing"
)

const (
	amazonResultsMarker = "div.s-main-slot"
	amazonPriceNodes    = "span.a-price-whole"
)

// Amazon scrapes listing prices from Amazon search results.
type Amazon struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewAmazon(cfg config.PricingConfig, userAgent string, logger *zap.Logger) *Amazon {
	return &Amazon{
		http:    newHTTPClient(cfg, userAgent),
		baseURL: cfg.AmazonBaseURL,
		logger:  logger.Named("source.amazon"),
	}
}

func (a *Amazon) Name() string { return "amazon" }

func (a *Amazon) Quotes(ctx context.Context, product string) ([]pricing.PriceQuote, error) {
	searchURL := fmt.Sprintf("%s/s?k=%s", a.baseURL, plusEscape(product))

	doc, err := fetchDocument(ctx, a.http, a.Name(), searchURL)
	if err != nil {
		return nil, err
	}
	if doc.Find(amazonResultsMarker).Length() == 0 {
		return nil, &pricing.SourceError{
			Source: a.Name(),
			Kind:   pricing.KindStructure,
			Err:    fmt.Errorf("results container %q not present", amazonResultsMarker),
		}
	}

	texts := nodeTexts(doc, amazonPriceNodes)
	quotes := pricing.QuotesFromTexts(a.Name(), texts)
	a.logger.Debug("Extracted quotes.",
		zap.String("product", product),
		zap.Int("nodes", len(texts)),
		zap.Int("quotes", len(quotes)))
	return quotes, nil
}
