// File: internal/pricing/sources/tcgplayer_test.go
package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/config"
	"github.com/draftbay/lister-cli/internal/mocks"
	"github.com/draftbay/lister-cli/internal/pricing"
)

func newTCGUnderTest(fake *mocks.FakeSession) *TCGPlayer {
	cfg := config.PricingConfig{
		TCGPlayerBaseURL: "https://www.tcgplayer.com",
		ElementWait:      50 * time.Millisecond,
	}
	return NewTCGPlayer(cfg, fake, zap.NewNop())
}

func TestTCGPlayerQuotes(t *testing.T) {
	fake := mocks.NewFakeSession()
	fake.TextsBySel[tcgPriceNodes] = []string{"$3.50", "$4.00", "Out of Stock"}

	quotes, err := newTCGUnderTest(fake).Quotes(context.Background(), "black lotus")

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, pricing.PriceQuote{Source: "tcgplayer", Price: 3.50}, quotes[0])
	assert.Equal(t, pricing.PriceQuote{Source: "tcgplayer", Price: 4.00}, quotes[1])

	navs := fake.CallsFor("navigate")
	require.Len(t, navs, 1)
	assert.Equal(t, "https://www.tcgplayer.com/search/all/product?q=black%20lotus", navs[0].Value)
	// The scrape runs in its own tab and releases it before returning.
	assert.Len(t, fake.CallsFor("new_tab"), 1)
	assert.Equal(t, 1, fake.CloseCount)
}

func TestTCGPlayerZeroResults(t *testing.T) {
	fake := mocks.NewFakeSession()
	fake.Missing[tcgPriceNodes] = true

	quotes, err := newTCGUnderTest(fake).Quotes(context.Background(), "nothing sells")

	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Equal(t, 1, fake.CloseCount)
}

func TestTCGPlayerNewTabFailure(t *testing.T) {
	fake := mocks.NewFakeSession()
	fake.NewTabErr = errors.New("browser went away")

	_, err := newTCGUnderTest(fake).Quotes(context.Background(), "anything")

	var srcErr *pricing.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, "tcgplayer", srcErr.Source)
	assert.Equal(t, pricing.KindTransport, srcErr.Kind)
	assert.Zero(t, fake.CloseCount)
}

func TestTCGPlayerNavigateFailure(t *testing.T) {
	fake := mocks.NewFakeSession()
	fake.NavigateErrs["https://www.tcgplayer.com/search/all/product?q=anything"] = errors.New("net::ERR_NAME_NOT_RESOLVED")

	_, err := newTCGUnderTest(fake).Quotes(context.Background(), "anything")

	var srcErr *pricing.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, pricing.KindTransport, srcErr.Kind)
	// The tab is still released on the failure path.
	assert.Equal(t, 1, fake.CloseCount)
}

func TestTCGPlayerExtractionFailure(t *testing.T) {
	fake := mocks.NewFakeSession()
	fake.Errors[tcgPriceNodes] = errors.New("javascript evaluation failed")

	_, err := newTCGUnderTest(fake).Quotes(context.Background(), "anything")

	var srcErr *pricing.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, pricing.KindStructure, srcErr.Kind)
	assert.Equal(t, 1, fake.CloseCount)
}
