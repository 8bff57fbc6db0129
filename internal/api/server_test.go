package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsight/shopsight/internal/brand"
	"github.com/shopsight/shopsight/internal/config"
	"github.com/shopsight/shopsight/internal/ingest"
	"github.com/shopsight/shopsight/internal/storage/postgres"
)

type stubIngest struct {
	profile brand.Profile
	err     error
}

func (s *stubIngest) Ingest(_ context.Context, _ string) (brand.Profile, error) {
	return s.profile, s.err
}

type stubStore struct {
	profiles    map[int64]brand.Profile
	competitors map[int64][]brand.Profile
	addErr      error
	removeErr   error
}

func (s *stubStore) GetProfile(_ context.Context, brandID int64) (brand.Profile, error) {
	profile, ok := s.profiles[brandID]
	if !ok {
		return brand.Profile{}, postgres.ErrNotFound
	}
	return profile, nil
}

func (s *stubStore) Competitors(_ context.Context, brandID int64) ([]brand.Profile, error) {
	return s.competitors[brandID], nil
}

func (s *stubStore) AddCompetitor(_ context.Context, brandID, competitorID int64) error {
	if brandID == competitorID {
		return postgres.ErrSelfCompetitor
	}
	return s.addErr
}

func (s *stubStore) RemoveCompetitor(_ context.Context, _, _ int64) error {
	return s.removeErr
}

func newTestServer(ing IngestService, store ProfileStore, cfg config.Config) *httptest.Server {
	return httptest.NewServer(NewServer(ing, store, nil, cfg).Handler())
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubIngest{}, &stubStore{}, config.Config{})
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestIngestBrandSuccess(t *testing.T) {
	t.Parallel()

	profile := brand.Profile{ID: 1, WebsiteURL: "https://example.com"}
	ts := newTestServer(&stubIngest{profile: profile}, &stubStore{}, config.Config{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/brands/ingest", `{"website_url":"https://example.com"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var got brand.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, int64(1), got.ID)
	require.Equal(t, "https://example.com", got.WebsiteURL)
}

func TestIngestBrandErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid url", fmt.Errorf("%w: empty", ingest.ErrInvalidURL), http.StatusBadRequest},
		{"unreachable", fmt.Errorf("%w: https://example.com", ingest.ErrUnreachable), http.StatusUnauthorized},
		{"persistence", fmt.Errorf("%w: tx aborted", ingest.ErrPersistence), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(&stubIngest{err: tt.err}, &stubStore{}, config.Config{})
			defer ts.Close()

			resp := postJSON(t, ts.URL+"/v1/brands/ingest", `{"website_url":"https://example.com"}`)
			resp.Body.Close()
			require.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestIngestBrandRejectsBadBody(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubIngest{}, &stubStore{}, config.Config{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/brands/ingest", `{"website_url":""}`)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/v1/brands/ingest", `not json`)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBrandNotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubIngest{}, &stubStore{profiles: map[int64]brand.Profile{}}, config.Config{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/brands/99")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetBrandRejectsBadID(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubIngest{}, &stubStore{}, config.Config{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/brands/abc")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListCompetitors(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		profiles: map[int64]brand.Profile{
			1: {ID: 1, WebsiteURL: "https://example.com"},
		},
		competitors: map[int64][]brand.Profile{
			1: {{ID: 2, WebsiteURL: "https://rival.com"}},
		},
	}
	ts := newTestServer(&stubIngest{}, store, config.Config{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/brands/1/competitors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got competitorsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, int64(1), got.Brand.ID)
	require.Len(t, got.Competitors, 1)
	require.Equal(t, "https://rival.com", got.Competitors[0].WebsiteURL)
}

func TestListCompetitorsEmpty(t *testing.T) {
	t.Parallel()

	store := &stubStore{profiles: map[int64]brand.Profile{1: {ID: 1}}}
	ts := newTestServer(&stubIngest{}, store, config.Config{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/brands/1/competitors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got competitorsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.NotNil(t, got.Competitors)
	require.Empty(t, got.Competitors)
}

func TestAddCompetitorSelfMapping(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubIngest{}, &stubStore{}, config.Config{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/brands/1/competitors/1", "")
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRemoveCompetitorNotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubIngest{}, &stubStore{removeErr: postgres.ErrNotFound}, config.Config{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/brands/1/competitors/2", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIKeyGuardsV1Routes(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Auth: config.AuthConfig{Enabled: true, APIKey: "secret"}}
	ts := newTestServer(&stubIngest{}, &stubStore{}, cfg)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/brands/ingest", `{"website_url":"https://example.com"}`)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/brands/ingest", strings.NewReader(`{"website_url":"https://example.com"}`))
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "secret")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	// Health endpoints stay open.
	healthResp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	healthResp.Body.Close()
	require.Equal(t, http.StatusOK, healthResp.StatusCode)
}
