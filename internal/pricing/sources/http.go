// File: internal/pricing/sources/http.go
// Shared HTTP plumbing for the stateless marketplace adapters.
package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/pricing"
)

// newHTTPClient builds the resty client the stateless adapters share the
// shape of: cookie jar, realistic UA, anti-bot friendly transport, bounded
// request timeout.
func newHTTPClient(cfg config.PricingConfig, userAgent string) *resty.Client {
	client := resty.New()
	client.SetTimeout(cfg.RequestTimeout)
	client.SetHeader("User-Agent", userAgent)
	if jar, err := cookiejar.New(nil); err == nil {
		client.SetCookieJar(jar)
	}
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	return client
}

// fetchDocument performs the search GET and parses the body. Non-2xx status
// and network-level failures both classify as transport failures.
func fetchDocument(ctx context.Context, client *resty.Client, source, searchURL string) (*goquery.Document, error) {
	res, err := client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, &pricing.SourceError{Source: source, Kind: pricing.KindTransport, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &pricing.SourceError{
			Source: source,
			Kind:   pricing.KindTransport,
			Err:    fmt.Errorf("unexpected status %d for %s", res.StatusCode(), searchURL),
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, &pricing.SourceError{Source: source, Kind: pricing.KindStructure, Err: err}
	}
	return doc, nil
}

// plusEscape encodes a product query the way marketplace search URLs expect.
func plusEscape(product string) string {
	return strings.ReplaceAll(strings.TrimSpace(product), " ", "+")
}
