package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsight/shopsight/internal/brand"
)

func strptr(s string) *string { return &s }

func TestMergeProfileRowKeepsStoredWhenFreshEmpty(t *testing.T) {
	t.Parallel()

	old := profileRow{ID: 7, Name: "Acme", About: "old about"}

	merged := mergeProfileRow(old, brand.Profile{Name: "", About: "new about"})
	require.Equal(t, int64(7), merged.ID)
	require.Equal(t, "Acme", merged.Name)
	require.Equal(t, "new about", merged.About)
}

func TestProductKeyPrefersHandle(t *testing.T) {
	t.Parallel()

	kind, key := productKey(brand.Product{Handle: " Tee-Shirt ", Title: "Tee"})
	require.Equal(t, "handle", kind)
	require.Equal(t, "tee-shirt", key)

	kind, key = productKey(brand.Product{Title: "  Limited Tee "})
	require.Equal(t, "title", kind)
	require.Equal(t, "limited tee", key)
}

func TestMergeProductRowKeepsIdentity(t *testing.T) {
	t.Parallel()

	old := brand.Product{ID: 11, SourceID: "42", Handle: "tee", Title: "Old Tee"}
	price := 12.5
	fresh := brand.Product{Handle: "tee", Title: "New Tee", Price: &price, IsHero: true}

	merged := mergeProductRow(old, fresh)
	require.Equal(t, int64(11), merged.ID)
	require.Equal(t, "42", merged.SourceID)
	require.Equal(t, "New Tee", merged.Title)
	require.True(t, merged.IsHero)
}

func TestMergePolicyRowRefreshesURLNotContent(t *testing.T) {
	t.Parallel()

	old := brand.Policy{Kind: brand.PolicyPrivacy, URL: "https://a/old", Content: strptr("kept")}
	merged := mergePolicyRow(old, brand.Policy{Kind: brand.PolicyPrivacy, URL: "https://a/new", Content: nil})
	require.Equal(t, "https://a/new", merged.URL)
	require.Equal(t, "kept", *merged.Content)

	merged = mergePolicyRow(old, brand.Policy{Kind: brand.PolicyPrivacy, URL: "https://a/new", Content: strptr("fresh")})
	require.Equal(t, "fresh", *merged.Content)
}

func TestMergeLinkRowKeepsLabelWhenFreshBlank(t *testing.T) {
	t.Parallel()

	old := brand.ImportantLink{Kind: brand.LinkFAQ, URL: "https://a/faq-old", Label: "FAQ"}
	merged := mergeLinkRow(old, brand.ImportantLink{Kind: brand.LinkFAQ, URL: "https://a/faq", Label: ""})
	require.Equal(t, "https://a/faq", merged.URL)
	require.Equal(t, "FAQ", merged.Label)
}
