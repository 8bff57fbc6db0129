// Package brand defines the core types shared across the ingestion pipeline.
package brand

import (
	"encoding/json"
	"time"
)

// PolicyKind identifies one of the storefront policy pages.
type PolicyKind string

// Policy kinds persisted per profile; exactly one row per kind.
const (
	PolicyPrivacy  PolicyKind = "privacy_policy"
	PolicyRefund   PolicyKind = "refund_policy"
	PolicyReturn   PolicyKind = "return_policy"
	PolicyShipping PolicyKind = "shipping_policy"
	PolicyTerms    PolicyKind = "terms_of_service"
)

// PolicyKinds lists every policy kind in stable order.
func PolicyKinds() []PolicyKind {
	return []PolicyKind{PolicyPrivacy, PolicyRefund, PolicyReturn, PolicyShipping, PolicyTerms}
}

// SocialPlatform identifies a social network, with a catch-all for
// unrecognized sources.
type SocialPlatform string

// Known social platforms.
const (
	SocialInstagram SocialPlatform = "instagram"
	SocialFacebook  SocialPlatform = "facebook"
	SocialTikTok    SocialPlatform = "tiktok"
	SocialTwitter   SocialPlatform = "twitter"
	SocialYouTube   SocialPlatform = "youtube"
	SocialPinterest SocialPlatform = "pinterest"
	SocialLinkedIn  SocialPlatform = "linkedin"
	SocialOther     SocialPlatform = "other"
)

// ContactKind identifies a contact channel.
type ContactKind string

// Contact kinds.
const (
	ContactEmail ContactKind = "email"
	ContactPhone ContactKind = "phone"
)

// LinkKind classifies a homepage link into one well-known slot.
type LinkKind string

// Link kinds, one slot each per profile.
const (
	LinkOrderTracking LinkKind = "order_tracking"
	LinkContact       LinkKind = "contact_us"
	LinkBlog          LinkKind = "blog"
	LinkFAQ           LinkKind = "faq"
	LinkAbout         LinkKind = "about"
	LinkHomepage      LinkKind = "homepage"
)

// LinkKinds lists every link kind in classification precedence order.
func LinkKinds() []LinkKind {
	return []LinkKind{LinkOrderTracking, LinkContact, LinkBlog, LinkFAQ, LinkAbout, LinkHomepage}
}

// Product is one catalog entry. Price is nil when the feed carried no
// parseable price.
type Product struct {
	ID          int64    `json:"id,omitempty"`
	SourceID    string   `json:"source_id,omitempty"`
	Title       string   `json:"title"`
	Handle      string   `json:"handle,omitempty"`
	URL         string   `json:"url,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	IsHero      bool     `json:"is_hero"`
	ImageURL    string   `json:"image_url,omitempty"`
	Vendor      string   `json:"vendor,omitempty"`
	ProductType string   `json:"product_type,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Policy is one policy page. Content is nil for synthesized placeholders
// whose pages were never fetched.
type Policy struct {
	Kind    PolicyKind `json:"kind"`
	URL     string     `json:"url,omitempty"`
	Content *string    `json:"content"`
}

// FAQ is one question/answer pair. URL points at the page the pair was
// extracted from, when known.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	URL      string `json:"url,omitempty"`
}

// SocialHandle is one social link for a platform.
type SocialHandle struct {
	Platform SocialPlatform `json:"platform"`
	URL      string         `json:"url"`
}

// ContactDetail is one contact value for a channel.
type ContactDetail struct {
	Kind  ContactKind `json:"kind"`
	Value string      `json:"value"`
}

// ImportantLink is one classified homepage link.
type ImportantLink struct {
	Kind  LinkKind `json:"kind"`
	URL   string   `json:"url"`
	Label string   `json:"label,omitempty"`
}

// Profile is the canonical aggregate for one storefront. The enum-keyed maps
// make the one-row-per-kind invariants structural: a map cannot hold two
// policies of the same kind.
type Profile struct {
	ID         int64  `json:"id,omitempty"`
	WebsiteURL string `json:"website_url"`
	Name       string `json:"name,omitempty"`
	About      string `json:"about,omitempty"`

	Products     []Product `json:"products"`
	HeroProducts []Product `json:"hero_products"`

	Policies map[PolicyKind]Policy         `json:"policies"`
	FAQs     []FAQ                         `json:"faqs"`
	Socials  map[SocialPlatform]SocialHandle `json:"social_handles"`
	Contacts map[ContactKind]ContactDetail `json:"contact_details"`
	Links    map[LinkKind]ImportantLink    `json:"important_links"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// RawProduct mirrors one entry of a Shopify-style /products.json feed. Every
// field is optional; extraction never fails on missing data.
type RawProduct struct {
	ID          *int64       `json:"id"`
	Handle      string       `json:"handle"`
	Title       string       `json:"title"`
	Vendor      string       `json:"vendor"`
	ProductType string       `json:"product_type"`
	BodyHTML    string       `json:"body_html"`
	Variants    []RawVariant `json:"variants"`
	Images      []RawImage   `json:"images"`
}

// RawVariant carries the price fields of one product variant.
type RawVariant struct {
	Price    FeedValue `json:"price"`
	Currency string    `json:"currency"`
}

// FeedValue is a string that also accepts bare JSON numbers, since feeds are
// inconsistent about quoting prices. Anything else decodes to empty.
type FeedValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FeedValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FeedValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = FeedValue(n.String())
		return nil
	}
	*v = ""
	return nil
}

// RawImage carries one product image source.
type RawImage struct {
	Src string `json:"src"`
}

// RawBundle is the ephemeral per-request collection of extractor outputs.
// Absence is not an error anywhere in this struct.
type RawBundle struct {
	Products      []RawProduct
	PrivacyPolicy *string
	RefundPolicy  *string
	FAQs          []RawFAQ
	Socials       map[string]string
	Contacts      map[string]string
	About         *string
	Links         []string
}

// RawFAQ is one heading/paragraph pair pulled off a FAQ page.
type RawFAQ struct {
	Question string
	Answer   string
}
