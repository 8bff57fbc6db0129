package normalize

import (
	"strings"

	"github.com/shopsight/shopsight/internal/brand"
)

// heroFallbackCount is how many leading catalog products become heroes when
// homepage detection finds none.
const heroFallbackCount = 4

// DetectHeroes marks products whose product-detail-page path appears among
// the homepage links and returns them in feed order. Matching ignores case
// and trailing slashes.
func DetectHeroes(products []brand.Product, homepageLinks []string) []brand.Product {
	linkPaths := make(map[string]struct{}, len(homepageLinks))
	for _, link := range homepageLinks {
		path := brand.CanonicalPath(link)
		if !strings.Contains(path, "/products/") {
			continue
		}
		linkPaths[path] = struct{}{}
	}

	var heroes []brand.Product
	for i := range products {
		if products[i].Handle == "" {
			continue
		}
		path := strings.ToLower(brand.ProductPath(products[i].Handle))
		if _, ok := linkPaths[path]; ok {
			products[i].IsHero = true
			heroes = append(heroes, products[i])
		}
	}
	return heroes
}

// FallbackHeroes promotes the first products in feed order when detection
// found none. All products become heroes when the catalog is smaller than
// the fallback count.
func FallbackHeroes(products []brand.Product) []brand.Product {
	n := heroFallbackCount
	if len(products) < n {
		n = len(products)
	}
	heroes := make([]brand.Product, 0, n)
	for i := 0; i < n; i++ {
		products[i].IsHero = true
		heroes = append(heroes, products[i])
	}
	return heroes
}
