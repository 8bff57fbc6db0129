// Package normalize builds the canonical brand profile from a raw scrape
// bundle. Build is a pure transformation: for fixed inputs its output is
// byte-for-byte reproducible.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopsight/shopsight/internal/brand"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// policyPaths gives the conventional page path per policy kind, used both
// for fetched entries and synthesized placeholders.
var policyPaths = map[brand.PolicyKind]string{
	brand.PolicyPrivacy:  "/policies/privacy-policy",
	brand.PolicyRefund:   "/policies/refund-policy",
	brand.PolicyReturn:   "/policies/return-policy",
	brand.PolicyShipping: "/policies/shipping-policy",
	brand.PolicyTerms:    "/policies/terms-of-service",
}

// socialPlatforms maps extractor keys onto the platform enum. Unknown keys
// become SocialOther rather than being dropped.
var socialPlatforms = map[string]brand.SocialPlatform{
	"instagram": brand.SocialInstagram,
	"facebook":  brand.SocialFacebook,
	"tiktok":    brand.SocialTikTok,
	"twitter":   brand.SocialTwitter,
	"x":         brand.SocialTwitter,
	"youtube":   brand.SocialYouTube,
	"pinterest": brand.SocialPinterest,
	"linkedin":  brand.SocialLinkedIn,
}

// Build combines every extractor output into one Profile.
func Build(baseURL string, bundle brand.RawBundle, now time.Time) (brand.Profile, error) {
	base, err := brand.CanonicalBaseURL(baseURL)
	if err != nil {
		return brand.Profile{}, err
	}

	products := buildProducts(base, bundle.Products)
	heroes := DetectHeroes(products, bundle.Links)
	if len(heroes) == 0 {
		heroes = FallbackHeroes(products)
	}

	profile := brand.Profile{
		WebsiteURL:   base,
		Products:     products,
		HeroProducts: heroes,
		Policies:     buildPolicies(base, bundle.PrivacyPolicy, bundle.RefundPolicy),
		FAQs:         buildFAQs(bundle.FAQs, guessFAQPageURL(base, bundle.Links)),
		Socials:      buildSocials(bundle.Socials),
		Contacts:     buildContacts(bundle.Contacts),
		Links:        ClassifyLinks(base, bundle.Links),
		ScrapedAt:    now.UTC(),
	}
	if bundle.About != nil {
		profile.About = *bundle.About
	}
	return profile, nil
}

func buildProducts(base string, raw []brand.RawProduct) []brand.Product {
	products := make([]brand.Product, 0, len(raw))
	for _, p := range raw {
		title := p.Title
		if title == "" {
			title = p.Handle
		}
		if title == "" {
			title = "Untitled"
		}

		product := brand.Product{
			Title:       title,
			Handle:      p.Handle,
			Vendor:      p.Vendor,
			ProductType: p.ProductType,
			Description: stripHTML(p.BodyHTML),
		}
		if p.ID != nil {
			product.SourceID = strconv.FormatInt(*p.ID, 10)
		}
		if p.Handle != "" {
			product.URL = brand.JoinPath(base, brand.ProductPath(p.Handle))
		}
		if len(p.Variants) > 0 {
			product.Price = parsePrice(string(p.Variants[0].Price))
			product.Currency = p.Variants[0].Currency
		}
		if len(p.Images) > 0 {
			product.ImageURL = p.Images[0].Src
		}
		products = append(products, product)
	}
	return products
}

// parsePrice returns nil for anything non-numeric rather than an error.
func parsePrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &price
}

func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// buildPolicies merges the fetched privacy/refund texts with synthesized
// placeholders for the remaining kinds. Dedup is by kind: a content-bearing
// entry beats a placeholder, and fetched entries are considered first.
func buildPolicies(base string, privacy, refund *string) map[brand.PolicyKind]brand.Policy {
	var candidates []brand.Policy
	if privacy != nil {
		candidates = append(candidates, brand.Policy{
			Kind:    brand.PolicyPrivacy,
			URL:     brand.JoinPath(base, policyPaths[brand.PolicyPrivacy]),
			Content: privacy,
		})
	}
	if refund != nil {
		candidates = append(candidates, brand.Policy{
			Kind:    brand.PolicyRefund,
			URL:     brand.JoinPath(base, policyPaths[brand.PolicyRefund]),
			Content: refund,
		})
	}
	for _, kind := range brand.PolicyKinds() {
		candidates = append(candidates, brand.Policy{
			Kind: kind,
			URL:  brand.JoinPath(base, policyPaths[kind]),
		})
	}

	policies := make(map[brand.PolicyKind]brand.Policy, len(brand.PolicyKinds()))
	for _, candidate := range candidates {
		existing, ok := policies[candidate.Kind]
		if !ok {
			policies[candidate.Kind] = candidate
			continue
		}
		if existing.Content == nil && candidate.Content != nil {
			policies[candidate.Kind] = candidate
		}
	}
	return policies
}

// buildFAQs drops entries with blank questions and stamps every survivor
// with the best-guess FAQ page URL.
func buildFAQs(raw []brand.RawFAQ, pageURL string) []brand.FAQ {
	faqs := make([]brand.FAQ, 0, len(raw))
	for _, item := range raw {
		question := strings.TrimSpace(item.Question)
		if question == "" {
			continue
		}
		faqs = append(faqs, brand.FAQ{
			Question: question,
			Answer:   strings.TrimSpace(item.Answer),
			URL:      pageURL,
		})
	}
	return faqs
}

func guessFAQPageURL(base string, links []string) string {
	for _, href := range links {
		low := strings.ToLower(href)
		if strings.Contains(low, "/pages/faq") || strings.Contains(low, "/pages/faqs") || strings.Contains(low, "/faq") {
			return brand.AbsoluteURL(base, href)
		}
	}
	return ""
}

// buildSocials iterates keys in sorted order so that two extractor keys
// mapping to one platform (x/twitter, or several unknowns collapsing into
// other) resolve the same way on every run.
func buildSocials(raw map[string]string) map[brand.SocialPlatform]brand.SocialHandle {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	socials := make(map[brand.SocialPlatform]brand.SocialHandle, len(raw))
	for _, key := range keys {
		platform, ok := socialPlatforms[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			platform = brand.SocialOther
		}
		socials[platform] = brand.SocialHandle{Platform: platform, URL: raw[key]}
	}
	return socials
}

func buildContacts(raw map[string]string) map[brand.ContactKind]brand.ContactDetail {
	contacts := make(map[brand.ContactKind]brand.ContactDetail, 2)
	if email := strings.TrimSpace(raw["email"]); email != "" {
		contacts[brand.ContactEmail] = brand.ContactDetail{Kind: brand.ContactEmail, Value: email}
	}
	if phone := strings.TrimSpace(raw["phone"]); phone != "" {
		contacts[brand.ContactPhone] = brand.ContactDetail{Kind: brand.ContactPhone, Value: phone}
	}
	return contacts
}
