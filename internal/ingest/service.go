// Package ingest orchestrates one end-to-end brand ingestion: probe the
// storefront, scrape its resources, normalize them into a profile, and
// reconcile that profile into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shopsight/shopsight/internal/brand"
	"github.com/shopsight/shopsight/internal/fetch"
	"github.com/shopsight/shopsight/internal/normalize"
	"github.com/shopsight/shopsight/internal/publisher"
	"github.com/shopsight/shopsight/internal/scrape"
	"github.com/shopsight/shopsight/internal/telemetry"
)

var (
	// ErrInvalidURL marks a website URL that cannot be canonicalized.
	ErrInvalidURL = errors.New("invalid website url")
	// ErrUnreachable marks a storefront whose homepage could not be fetched.
	ErrUnreachable = errors.New("storefront unreachable")
	// ErrPersistence marks a reconcile transaction failure.
	ErrPersistence = errors.New("profile persistence failed")
)

// Reconciler merges a normalized profile into durable state.
type Reconciler interface {
	Reconcile(ctx context.Context, profile brand.Profile) (brand.Profile, error)
}

// Snapshotter archives the raw homepage body and returns its URI.
type Snapshotter interface {
	Store(ctx context.Context, websiteURL string, body []byte) (string, error)
}

// Service runs ingestions. Archiver and Events are optional; when set they
// run best-effort after the reconcile commits.
type Service struct {
	fetcher  fetch.Fetcher
	scraper  *scrape.Scraper
	store    Reconciler
	archiver Snapshotter
	events   publisher.Publisher
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithArchiver enables homepage snapshot archival.
func WithArchiver(archiver Snapshotter) Option {
	return func(s *Service) { s.archiver = archiver }
}

// WithEvents enables ingest event publication to the given topic.
func WithEvents(events publisher.Publisher, topic string) Option {
	return func(s *Service) {
		s.events = events
		s.topic = topic
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New wires an ingest Service.
func New(fetcher fetch.Fetcher, scraper *scrape.Scraper, store Reconciler, logger *zap.Logger, opts ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if scraper == nil {
		return nil, fmt.Errorf("scraper is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		fetcher: fetcher,
		scraper: scraper,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ingest runs the full pipeline for one storefront URL and returns the
// persisted profile. Missing storefront resources degrade silently; only an
// unreachable homepage or a failed reconcile abort the ingest.
func (s *Service) Ingest(ctx context.Context, rawURL string) (brand.Profile, error) {
	started := s.now()

	base, err := brand.CanonicalBaseURL(rawURL)
	if err != nil {
		telemetry.ObserveIngest("invalid_url", s.now().Sub(started))
		return brand.Profile{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	logger := s.logger.With(zap.String("website_url", base))
	logger.Info("starting ingest")

	homepage, ok := s.fetcher.Text(ctx, base, "/")
	if !ok {
		telemetry.ObserveIngest("unreachable", s.now().Sub(started))
		return brand.Profile{}, fmt.Errorf("%w: %s", ErrUnreachable, base)
	}

	bundle := s.scraper.ScrapeAll(ctx, base, homepage)

	profile, err := normalize.Build(base, bundle, s.now())
	if err != nil {
		telemetry.ObserveIngest("invalid_url", s.now().Sub(started))
		return brand.Profile{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	persisted, err := s.store.Reconcile(ctx, profile)
	if err != nil {
		telemetry.ObserveIngest("persistence_error", s.now().Sub(started))
		return brand.Profile{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	snapshotURI := s.archiveSnapshot(ctx, logger, base, homepage)
	s.publishEvent(ctx, logger, persisted, snapshotURI)

	logger.Info("ingest complete",
		zap.Int64("brand_id", persisted.ID),
		zap.Int("products", len(persisted.Products)),
		zap.Int("heroes", len(persisted.HeroProducts)),
		zap.Duration("elapsed", s.now().Sub(started)),
	)
	telemetry.ObserveIngest("ok", s.now().Sub(started))
	return persisted, nil
}

// archiveSnapshot is best-effort: a failed upload is logged and the ingest
// still succeeds.
func (s *Service) archiveSnapshot(ctx context.Context, logger *zap.Logger, base, homepage string) string {
	if s.archiver == nil {
		return ""
	}
	uri, err := s.archiver.Store(ctx, base, []byte(homepage))
	if err != nil {
		logger.Warn("homepage snapshot archive failed", zap.Error(err))
		return ""
	}
	logger.Debug("homepage snapshot archived", zap.String("uri", uri))
	return uri
}

// publishEvent is best-effort: a failed publish is logged and the ingest
// still succeeds.
func (s *Service) publishEvent(ctx context.Context, logger *zap.Logger, profile brand.Profile, snapshotURI string) {
	if s.events == nil {
		return
	}
	event := publisher.IngestEvent{
		BrandID:      profile.ID,
		WebsiteURL:   profile.WebsiteURL,
		ProductCount: len(profile.Products),
		HeroCount:    len(profile.HeroProducts),
		SnapshotURI:  snapshotURI,
		ScrapedAt:    profile.ScrapedAt.Format(time.RFC3339),
	}
	if _, err := s.events.Publish(ctx, s.topic, event); err != nil {
		logger.Warn("ingest event publish failed", zap.Error(err))
	}
}
