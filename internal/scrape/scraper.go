// Package scrape turns fetched storefront resources into a raw bundle.
// Every extractor is best-effort: missing or malformed content degrades to
// empty fields, never to an error.
package scrape

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shopsight/shopsight/internal/brand"
	"github.com/shopsight/shopsight/internal/fetch"
	"github.com/shopsight/shopsight/internal/telemetry"
)

// Shopify-conventional resource paths. Where two are listed the first
// reachable one wins.
var (
	productFeedPath    = "/products.json"
	privacyPolicyPath  = "/policies/privacy-policy"
	refundPolicyPath   = "/policies/refund-policy"
	faqPagePaths       = []string{"/pages/faqs", "/pages/faq"}
	contactPagePaths   = []string{"/pages/contact", "/contact"}
	aboutPagePaths     = []string{"/pages/about", "/about"}
)

// Scraper fans out the per-resource extractors for one storefront.
type Scraper struct {
	fetcher fetch.Fetcher
	logger  *zap.Logger
}

// New builds a Scraper.
func New(fetcher fetch.Fetcher, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetcher: fetcher, logger: logger}
}

// ScrapeAll gathers every resource for the site into a RawBundle. The
// homepage HTML comes from the caller's reachability probe; the remaining
// resources have no data dependency on each other and are fetched in
// parallel. No individual failure is fatal.
func (s *Scraper) ScrapeAll(ctx context.Context, baseURL, homepageHTML string) brand.RawBundle {
	bundle := brand.RawBundle{
		Socials: ExtractSocials(homepageHTML),
		Links:   ExtractLinks(baseURL, homepageHTML),
	}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() { bundle.Products = s.products(ctx, baseURL) })
	run(func() { bundle.PrivacyPolicy = s.policy(ctx, baseURL, privacyPolicyPath) })
	run(func() { bundle.RefundPolicy = s.policy(ctx, baseURL, refundPolicyPath) })
	run(func() { bundle.FAQs = s.faqs(ctx, baseURL) })
	run(func() { bundle.Contacts = s.contacts(ctx, baseURL) })
	run(func() { bundle.About = s.about(ctx, baseURL) })
	wg.Wait()

	s.logger.Debug("scrape complete",
		zap.String("site", baseURL),
		zap.Int("products", len(bundle.Products)),
		zap.Int("faqs", len(bundle.FAQs)),
		zap.Int("links", len(bundle.Links)),
	)
	return bundle
}

func (s *Scraper) products(ctx context.Context, baseURL string) []brand.RawProduct {
	var feed struct {
		Products []brand.RawProduct `json:"products"`
	}
	ok := s.fetcher.JSON(ctx, baseURL, productFeedPath, &feed)
	telemetry.ObserveResourceFetch("products", ok)
	if !ok {
		return nil
	}
	return feed.Products
}

func (s *Scraper) policy(ctx context.Context, baseURL, path string) *string {
	html, ok := s.fetcher.Text(ctx, baseURL, path)
	telemetry.ObserveResourceFetch("policy", ok)
	if !ok {
		return nil
	}
	text := VisibleText(html)
	return &text
}

func (s *Scraper) faqs(ctx context.Context, baseURL string) []brand.RawFAQ {
	html, ok := s.firstReachable(ctx, baseURL, faqPagePaths)
	telemetry.ObserveResourceFetch("faq", ok)
	if !ok {
		return nil
	}
	return ExtractFAQs(html)
}

func (s *Scraper) contacts(ctx context.Context, baseURL string) map[string]string {
	html, ok := s.firstReachable(ctx, baseURL, contactPagePaths)
	telemetry.ObserveResourceFetch("contact", ok)
	if !ok {
		return nil
	}
	return ExtractContacts(html)
}

func (s *Scraper) about(ctx context.Context, baseURL string) *string {
	html, ok := s.firstReachable(ctx, baseURL, aboutPagePaths)
	telemetry.ObserveResourceFetch("about", ok)
	if !ok {
		return nil
	}
	text := VisibleText(html)
	return &text
}

func (s *Scraper) firstReachable(ctx context.Context, baseURL string, paths []string) (string, bool) {
	for _, path := range paths {
		if html, ok := s.fetcher.Text(ctx, baseURL, path); ok {
			return html, true
		}
	}
	return "", false
}
