package normalize

import (
	"strings"

	"github.com/shopsight/shopsight/internal/brand"
)

// linkRule classifies one homepage link into a kind. Rules are evaluated in
// order; the first matching rule wins for a link, and the first link to
// claim a kind keeps it.
type linkRule struct {
	kind  brand.LinkKind
	label string
	match func(lowered, base string) bool
}

var linkRules = []linkRule{
	{
		kind:  brand.LinkOrderTracking,
		label: "Order Tracking",
		match: func(h, _ string) bool {
			return strings.Contains(h, "order") && strings.Contains(h, "track")
		},
	},
	{
		kind:  brand.LinkContact,
		label: "Contact Us",
		match: func(h, _ string) bool {
			return strings.Contains(h, "/contact") || strings.Contains(h, "/pages/contact")
		},
	},
	{
		kind:  brand.LinkBlog,
		label: "Blog",
		match: func(h, _ string) bool { return strings.Contains(h, "/blog") },
	},
	{
		kind:  brand.LinkFAQ,
		label: "FAQ",
		match: func(h, _ string) bool {
			return strings.Contains(h, "/pages/faq") || strings.Contains(h, "/faq")
		},
	},
	{
		kind:  brand.LinkAbout,
		label: "About",
		match: func(h, _ string) bool {
			return strings.Contains(h, "/pages/about") || strings.Contains(h, "/about")
		},
	},
	{
		kind:  brand.LinkHomepage,
		label: "Homepage",
		match: func(h, base string) bool {
			return strings.TrimRight(h, "/") == strings.TrimRight(base, "/")
		},
	},
}

// ClassifyLinks assigns each homepage link to at most one kind. A synthetic
// homepage entry is appended when no link matched it, so the homepage slot
// is always populated.
func ClassifyLinks(base string, homepageLinks []string) map[brand.LinkKind]brand.ImportantLink {
	links := make(map[brand.LinkKind]brand.ImportantLink, len(linkRules))
	loweredBase := strings.ToLower(base)

	for _, href := range homepageLinks {
		lowered := strings.ToLower(href)
		for _, rule := range linkRules {
			if !rule.match(lowered, loweredBase) {
				continue
			}
			if _, taken := links[rule.kind]; !taken {
				links[rule.kind] = brand.ImportantLink{
					Kind:  rule.kind,
					URL:   brand.AbsoluteURL(base, href),
					Label: rule.label,
				}
			}
			break
		}
	}

	if _, ok := links[brand.LinkHomepage]; !ok {
		links[brand.LinkHomepage] = brand.ImportantLink{
			Kind:  brand.LinkHomepage,
			URL:   base,
			Label: "Homepage",
		}
	}
	return links
}
