package scrape

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned bodies per path; any path not present is absent.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Text(_ context.Context, _, path string) (string, bool) {
	body, ok := f.pages[path]
	return body, ok
}

func (f *fakeFetcher) JSON(_ context.Context, _, path string, into any) bool {
	body, ok := f.pages[path]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(body), into) == nil
}

const homepageHTML = `
<html><body>
  <a href="/products/tee-shirt">Tee</a>
  <a href="/pages/faq">FAQ</a>
  <a href="/pages/faq">FAQ again</a>
  <a href="https://instagram.com/acme">IG</a>
  <a href="https://instagram.com/acme-store">IG 2</a>
  <a href="https://tiktok.com/@acme">TikTok</a>
  <a href="#top">skip</a>
  <a href="javascript:void(0)">skip</a>
</body></html>`

func TestScrapeAllGathersEverything(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"/products.json":           `{"products":[{"handle":"tee-shirt","title":"Tee","variants":[{"price":"10.00"}]}]}`,
		"/policies/privacy-policy": `<html><body><p>We respect privacy.</p></body></html>`,
		"/pages/faq":               `<html><body><h2>Do you ship?</h2><p>Yes, worldwide.</p></body></html>`,
		"/pages/contact":           `<html><body>Reach us at help@example.com or call +1-800-555-0100</body></html>`,
		"/pages/about":             `<html><body><p>We make tees.</p></body></html>`,
	}}
	scraper := New(fetcher, nil)

	bundle := scraper.ScrapeAll(context.Background(), "https://example.com", homepageHTML)

	require.Len(t, bundle.Products, 1)
	require.Equal(t, "tee-shirt", bundle.Products[0].Handle)

	require.NotNil(t, bundle.PrivacyPolicy)
	require.Equal(t, "We respect privacy.", *bundle.PrivacyPolicy)
	require.Nil(t, bundle.RefundPolicy)

	require.Len(t, bundle.FAQs, 1)
	require.Equal(t, "Do you ship?", bundle.FAQs[0].Question)
	require.Equal(t, "Yes, worldwide.", bundle.FAQs[0].Answer)

	require.Equal(t, "help@example.com", bundle.Contacts["email"])
	require.Equal(t, "+1-800-555-0100", bundle.Contacts["phone"])

	require.NotNil(t, bundle.About)
	require.Equal(t, "We make tees.", *bundle.About)

	require.Equal(t, "https://instagram.com/acme-store", bundle.Socials["instagram"])
	require.Equal(t, "https://tiktok.com/@acme", bundle.Socials["tiktok"])

	require.Equal(t, []string{
		"https://example.com/products/tee-shirt",
		"https://example.com/pages/faq",
		"https://instagram.com/acme",
		"https://instagram.com/acme-store",
		"https://tiktok.com/@acme",
	}, bundle.Links)
}

func TestScrapeAllToleratesEverythingMissing(t *testing.T) {
	t.Parallel()

	scraper := New(&fakeFetcher{pages: map[string]string{}}, nil)
	bundle := scraper.ScrapeAll(context.Background(), "https://example.com", "")

	require.Empty(t, bundle.Products)
	require.Nil(t, bundle.PrivacyPolicy)
	require.Nil(t, bundle.RefundPolicy)
	require.Empty(t, bundle.FAQs)
	require.Empty(t, bundle.Contacts)
	require.Nil(t, bundle.About)
	require.Empty(t, bundle.Socials)
	require.Empty(t, bundle.Links)
}

func TestFallbackFAQPath(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"/pages/faq": `<html><body><h3>Returns?</h3><p>Within 30 days.</p></body></html>`,
	}}
	scraper := New(fetcher, nil)
	bundle := scraper.ScrapeAll(context.Background(), "https://example.com", "")

	require.Len(t, bundle.FAQs, 1)
	require.Equal(t, "Returns?", bundle.FAQs[0].Question)
}

func TestExtractFAQsNestedAnswer(t *testing.T) {
	t.Parallel()

	html := `<div><h3>Q1</h3></div><div><p>A1</p></div>`
	faqs := ExtractFAQs(html)
	require.Len(t, faqs, 1)
	require.Equal(t, "Q1", faqs[0].Question)
	require.Equal(t, "A1", faqs[0].Answer)
}

func TestExtractFAQsNoPairs(t *testing.T) {
	t.Parallel()

	require.Empty(t, ExtractFAQs(`<html><body><h2>Lonely heading</h2></body></html>`))
}

func TestExtractContactsAbsent(t *testing.T) {
	t.Parallel()

	contacts := ExtractContacts(`<html><body>No way to reach us.</body></html>`)
	require.Empty(t, contacts)
}

func TestVisibleTextDropsScripts(t *testing.T) {
	t.Parallel()

	html := `<html><head><style>.x{}</style></head><body><script>var x;</script><p>Hello   world</p></body></html>`
	require.Equal(t, "Hello world", VisibleText(html))
}

func TestExtractLinksResolvesRelative(t *testing.T) {
	t.Parallel()

	links := ExtractLinks("https://example.com", `<a href="/pages/about">About</a><a href="https://other.com/x">X</a>`)
	require.Equal(t, []string{"https://example.com/pages/about", "https://other.com/x"}, links)
}
