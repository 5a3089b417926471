// File: internal/pricing/sources/tcgplayer.go
package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/browser"
	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/pricing"
)

const tcgPriceNodes = ".search-result__market-price"

// TCGPlayer is the stateful adapter: its search page renders prices
// client-side, so it needs a browser rather than a plain HTTP request. Each
// query runs in its own tab of the shared browser and the tab is released
// before the query returns, so the listing flow's page is never disturbed.
type TCGPlayer struct {
	tabs    browser.TabOpener
	baseURL string
	wait    time.Duration
	logger  *zap.Logger
}

func NewTCGPlayer(cfg config.PricingConfig, tabs browser.TabOpener, logger *zap.Logger) *TCGPlayer {
	return &TCGPlayer{
		tabs:    tabs,
		baseURL: cfg.TCGPlayerBaseURL,
		wait:    cfg.ElementWait,
		logger:  logger.Named("source.tcgplayer"),
	}
}

func (t *TCGPlayer) Name() string { return "tcgplayer" }

// Quotes opens a tab, loads the product search page and reads the rendered
// market-price nodes. No matching elements within the wait is the same
// outcome as zero results.
func (t *TCGPlayer) Quotes(ctx context.Context, product string) ([]pricing.PriceQuote, error) {
	searchURL := fmt.Sprintf("%s/search/all/product?q=%s",
		t.baseURL, strings.ReplaceAll(strings.TrimSpace(product), " ", "%20"))

	tab, err := t.tabs.NewTab(ctx)
	if err != nil {
		return nil, &pricing.SourceError{Source: t.Name(), Kind: pricing.KindTransport, Err: err}
	}
	defer tab.Close()

	if err := tab.Navigate(ctx, searchURL); err != nil {
		return nil, &pricing.SourceError{Source: t.Name(), Kind: pricing.KindTransport, Err: err}
	}

	texts, err := tab.Texts(ctx, tcgPriceNodes, t.wait)
	if err != nil {
		return nil, &pricing.SourceError{Source: t.Name(), Kind: pricing.KindStructure, Err: err}
	}

	quotes := pricing.QuotesFromTexts(t.Name(), texts)
	t.logger.Debug("Extracted quotes.",
		zap.String("product", product),
		zap.Int("nodes", len(texts)),
		zap.Int("quotes", len(quotes)))
	return quotes, nil
}
