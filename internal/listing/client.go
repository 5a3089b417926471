// File: internal/listing/client.go
// Draft-listing API collaborator. The listing flow can stage drafts through
// the web UI alone; when API drafts are enabled, priced items are also pushed
// through this client.
package listing

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/config"
)

// Draft is the structured item description sent to the marketplace API.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartPrice  float64  `json:"startPrice"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	ConditionID string   `json:"conditionId"`
	ImagePaths  []string `json:"imagePaths"`
}

// ErrorKind classifies a draft-creation failure.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindAuth
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	default:
		return "transport"
	}
}

// APIError is a classified draft-creation failure.
type APIError struct {
	Kind ErrorKind
	Err  error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("listing api: %s failure: %v", e.Kind, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client creates draft listings.
type Client interface {
	CreateDraft(ctx context.Context, draft Draft) (string, error)
}

// HTTPClient is the resty-backed implementation.
type HTTPClient struct {
	http     *resty.Client
	endpoint string
	logger   *zap.Logger
}

func NewHTTPClient(cfg config.ListingConfig, logger *zap.Logger) *HTTPClient {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &HTTPClient{
		http:     client,
		endpoint: cfg.Endpoint,
		logger:   logger.Named("listing"),
	}
}

// CreateDraft submits the draft and returns the marketplace's listing
// identifier.
func (c *HTTPClient) CreateDraft(ctx context.Context, draft Draft) (string, error) {
	var out struct {
		ListingID string `json:"listingId"`
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(draft).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		return "", &APIError{Kind: KindTransport, Err: err}
	}

	switch {
	case res.StatusCode() == 401 || res.StatusCode() == 403:
		return "", &APIError{Kind: KindAuth, Err: fmt.Errorf("status %d", res.StatusCode())}
	case res.StatusCode() == 400 || res.StatusCode() == 422:
		return "", &APIError{Kind: KindValidation, Err: fmt.Errorf("status %d: %s", res.StatusCode(), res.String())}
	case !res.IsSuccess():
		return "", &APIError{Kind: KindTransport, Err: fmt.Errorf("status %d", res.StatusCode())}
	}

	if out.ListingID == "" {
		return "", &APIError{Kind: KindValidation, Err: fmt.Errorf("response missing listing identifier")}
	}
	c.logger.Info("Draft created via API.",
		zap.String("listing_id", out.ListingID),
		zap.String("title", draft.Title))
	return out.ListingID, nil
}
