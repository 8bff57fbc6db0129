package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopsight/shopsight/internal/brand"
	"github.com/shopsight/shopsight/internal/publisher"
	"github.com/shopsight/shopsight/internal/publisher/memory"
	"github.com/shopsight/shopsight/internal/scrape"
)

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Text(_ context.Context, _, path string) (string, bool) {
	body, ok := f.pages[path]
	return body, ok
}

func (f *stubFetcher) JSON(_ context.Context, _, path string, into any) bool {
	body, ok := f.pages[path]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(body), into) == nil
}

type stubStore struct {
	err      error
	received brand.Profile
}

func (s *stubStore) Reconcile(_ context.Context, profile brand.Profile) (brand.Profile, error) {
	if s.err != nil {
		return brand.Profile{}, s.err
	}
	s.received = profile
	persisted := profile
	persisted.ID = 1
	return persisted, nil
}

type stubArchiver struct {
	uri string
	err error
}

func (a *stubArchiver) Store(_ context.Context, _ string, _ []byte) (string, error) {
	return a.uri, a.err
}

func fixedClock() func() time.Time {
	now := time.Unix(1700000000, 0).UTC()
	return func() time.Time { return now }
}

func newService(t *testing.T, fetcher *stubFetcher, store Reconciler, opts ...Option) *Service {
	t.Helper()
	opts = append(opts, WithClock(fixedClock()))
	svc, err := New(fetcher, scrape.New(fetcher, nil), store, nil, opts...)
	require.NoError(t, err)
	return svc
}

func TestIngestHappyPath(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{
		"/":              `<html><body><a href="/products/tee">Tee</a></body></html>`,
		"/products.json": `{"products":[{"handle":"tee","title":"Tee"}]}`,
	}}
	store := &stubStore{}
	events := memory.New()

	svc := newService(t, fetcher, store,
		WithArchiver(&stubArchiver{uri: "memory://snap"}),
		WithEvents(events, "brand-ingests"),
	)

	profile, err := svc.Ingest(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), profile.ID)
	require.Equal(t, "https://example.com", profile.WebsiteURL)
	require.Len(t, profile.Products, 1)
	require.Len(t, profile.HeroProducts, 1)
	require.True(t, profile.HeroProducts[0].IsHero)

	msgs := events.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "brand-ingests", msgs[0].Topic)
	event, isEvent := msgs[0].Payload.(publisher.IngestEvent)
	require.True(t, isEvent)
	require.Equal(t, int64(1), event.BrandID)
	require.Equal(t, "memory://snap", event.SnapshotURI)
}

func TestIngestInvalidURL(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubFetcher{pages: map[string]string{}}, &stubStore{})

	_, err := svc.Ingest(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidURL)
}

func TestIngestUnreachableHomepage(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubFetcher{pages: map[string]string{}}, &stubStore{})

	_, err := svc.Ingest(context.Background(), "https://example.com")
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestIngestPersistenceFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{"/": "<html/>"}}
	store := &stubStore{err: errors.New("connection reset")}
	svc := newService(t, fetcher, store)

	_, err := svc.Ingest(context.Background(), "https://example.com")
	require.ErrorIs(t, err, ErrPersistence)
}

func TestIngestSurvivesArchiveAndPublishFailures(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{"/": "<html/>"}}
	store := &stubStore{}
	svc := newService(t, fetcher, store,
		WithArchiver(&stubArchiver{err: errors.New("bucket gone")}),
		WithEvents(failingPublisher{}, "brand-ingests"),
	)

	profile, err := svc.Ingest(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), profile.ID)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, any) (string, error) {
	return "", errors.New("broker unavailable")
}

func TestIngestMissingResourcesDegradeSilently(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{"/": "<html><body>empty shop</body></html>"}}
	store := &stubStore{}
	svc := newService(t, fetcher, store)

	profile, err := svc.Ingest(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Empty(t, profile.Products)
	require.Len(t, profile.Policies, 5)
	require.NotEmpty(t, profile.Links)
}
