// Package publisher emits ingest lifecycle events so downstream consumers
// can react to freshly reconciled profiles.
package publisher

import "context"

// Publisher delivers an event payload to a named topic and returns the
// broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// IngestEvent is the payload published after every completed ingest.
type IngestEvent struct {
	BrandID      int64  `json:"brand_id"`
	WebsiteURL   string `json:"website_url"`
	ProductCount int    `json:"product_count"`
	HeroCount    int    `json:"hero_count"`
	SnapshotURI  string `json:"snapshot_uri,omitempty"`
	ScrapedAt    string `json:"scraped_at"`
}
