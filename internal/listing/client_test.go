// File: internal/listing/client_test.go
package listing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/draftbay/lister-cli/internal/config"
)

func testDraft() Draft {
	return Draft{
		Title:       "charizard holo",
		Description: "This is a draft listing for a charizard holo.",
		StartPrice:  11.25,
		Currency:    "USD",
		Category:    "collectibles",
		ConditionID: "3000",
		ImagePaths:  []string{"/photos/charizard_holo.jpg"},
	}
}

func newClientForServer(srv *httptest.Server, token string) *HTTPClient {
	return NewHTTPClient(config.ListingConfig{
		Endpoint: srv.URL + "/drafts",
		Token:    token,
		Timeout:  2 * time.Second,
	}, zap.NewNop())
}

func TestCreateDraft(t *testing.T) {
	var gotAuth string
	var gotBody Draft
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"listingId":"LST-1234"}`))
	}))
	defer srv.Close()

	id, err := newClientForServer(srv, "sekret").CreateDraft(context.Background(), testDraft())

	require.NoError(t, err)
	assert.Equal(t, "LST-1234", id)
	assert.Equal(t, "Bearer sekret", gotAuth)
	assert.Equal(t, testDraft(), gotBody)
}

func TestCreateDraftStatusClassification(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		kind   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuth},
		{"forbidden", http.StatusForbidden, KindAuth},
		{"bad request", http.StatusBadRequest, KindValidation},
		{"unprocessable", http.StatusUnprocessableEntity, KindValidation},
		{"server error", http.StatusInternalServerError, KindTransport},
		{"rate limited", http.StatusTooManyRequests, KindTransport},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := newClientForServer(srv, "").CreateDraft(context.Background(), testDraft())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.kind, apiErr.Kind)
		})
	}
}

func TestCreateDraftMissingListingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newClientForServer(srv, "").CreateDraft(context.Background(), testDraft())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
}

func TestCreateDraftConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newClientForServer(srv, "").CreateDraft(context.Background(), testDraft())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindTransport, apiErr.Kind)
}
