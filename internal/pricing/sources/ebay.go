// File: internal/pricing/sources/ebay.go
package sources

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/pricing"
)

// eBay search-result selectors. Volatile by nature; engine logic never
// depends on their contents.
const (
	ebayResultsMarker = "ul.srp-results"
	ebayPriceNodes    = "li.s-item span.s-item__price"
)

// Ebay scrapes recent-listing prices from eBay search results.
type Ebay struct {
	http    *resty.Client
	baseURL string
	logger  *zap.Logger
}

func NewEbay(cfg config.PricingConfig, userAgent string, logger *zap.Logger) *Ebay {
	return &Ebay{
		http:    newHTTPClient(cfg, userAgent),
		baseURL: cfg.EbayBaseURL,
		logger:  logger.Named("source.ebay"),
	}
}

func (e *Ebay) Name() string { return "ebay" }

// Quotes fetches the newly-listed search page for the product and extracts
// one quote per parseable price node. A result page with the results
// container but no price nodes is a valid zero-result outcome; a page
// without the container means the markup changed underneath us.
func (e *Ebay) Quotes(ctx context.Context, product string) ([]pricing.PriceQuote, error) {
	searchURL := fmt.Sprintf("%s/sch/i.html?_nkw=%s&_sop=12", e.baseURL, plusEscape(product))

	doc, err := fetchDocument(ctx, e.http, e.Name(), searchURL)
	if err != nil {
		return nil, err
	}
	if doc.Find(ebayResultsMarker).Length() == 0 {
		return nil, &pricing.SourceError{
			Source: e.Name(),
			Kind:   pricing.KindStructure,
			Err:    fmt.Errorf("results container %q not present", ebayResultsMarker),
		}
	}

	texts := nodeTexts(doc, ebayPriceNodes)
	quotes := pricing.QuotesFromTexts(e.Name(), texts)
	e.logger.Debug("Extracted quotes.",
		zap.String("product", product),
		zap.Int("nodes", len(texts)),
		zap.Int("quotes", len(quotes)))
	return quotes, nil
}

// nodeTexts collects the text of every node matching sel.
func nodeTexts(doc *goquery.Document, sel string) []string {
	var texts []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, s.Text())
	})
	return texts
}
