package postgres

import (
	"strings"

	"github.com/shopsight/shopsight/internal/brand"
)

// Pure merge policy per entity kind: each function takes the previously
// persisted row and the freshly normalized value and returns the row to
// persist. Keeping these free of SQL makes the merge rules testable without
// a live store.

// profileRow is the brands table projection the merge rules care about.
type profileRow struct {
	ID    int64
	Name  string
	About string
}

// mergeProfileRow updates name/about only when the new value is non-empty;
// otherwise the stored value is retained.
func mergeProfileRow(old profileRow, fresh brand.Profile) profileRow {
	merged := old
	if fresh.Name != "" {
		merged.Name = fresh.Name
	}
	if fresh.About != "" {
		merged.About = fresh.About
	}
	return merged
}

// productKey returns the identity key for matching a product against stored
// rows: the handle when present, else the normalized title.
func productKey(p brand.Product) (keyKind, key string) {
	if handle := strings.TrimSpace(strings.ToLower(p.Handle)); handle != "" {
		return "handle", handle
	}
	return "title", strings.TrimSpace(strings.ToLower(p.Title))
}

// mergeProductRow overwrites every field from the fresh product but keeps
// the stored row identity and falls back to the stored source id when the
// feed stopped carrying one.
func mergeProductRow(old, fresh brand.Product) brand.Product {
	merged := fresh
	merged.ID = old.ID
	if merged.SourceID == "" {
		merged.SourceID = old.SourceID
	}
	return merged
}

// mergePolicyRow always refreshes the URL; content is overwritten only when
// the fresh entry actually carries content.
func mergePolicyRow(old, fresh brand.Policy) brand.Policy {
	merged := old
	if fresh.URL != "" {
		merged.URL = fresh.URL
	}
	if fresh.Content != nil {
		merged.Content = fresh.Content
	}
	return merged
}

// mergeLinkRow always refreshes the URL; the label is overwritten only when
// the fresh entry has one.
func mergeLinkRow(old, fresh brand.ImportantLink) brand.ImportantLink {
	merged := old
	merged.URL = fresh.URL
	if fresh.Label != "" {
		merged.Label = fresh.Label
	}
	return merged
}
