package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopsight/shopsight/internal/brand"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// socialDomains maps a URL substring to the extractor's platform key. The
// normalizer maps these keys onto the closed platform enum.
var socialDomains = []struct {
	needle string
	key    string
}{
	{"instagram.com", "instagram"},
	{"facebook.com", "facebook"},
	{"twitter.com", "twitter"},
	{"linkedin.com", "linkedin"},
	{"youtube.com", "youtube"},
	{"tiktok.com", "tiktok"},
}

// VisibleText strips markup from an HTML document and collapses whitespace.
func VisibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return spaceRun.ReplaceAllString(strings.TrimSpace(doc.Text()), " ")
}

// ExtractFAQs pairs each heading-like element with the next paragraph-like
// element following it. Pages without such pairs yield an empty list.
func ExtractFAQs(html string) []brand.RawFAQ {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var faqs []brand.RawFAQ
	doc.Find("h2, h3, strong").Each(func(_ int, q *goquery.Selection) {
		answer := q.NextAllFiltered("p").First()
		if answer.Length() == 0 {
			answer = q.Parent().NextAllFiltered("p").First()
		}
		if answer.Length() == 0 {
			return
		}
		faqs = append(faqs, brand.RawFAQ{
			Question: strings.TrimSpace(q.Text()),
			Answer:   strings.TrimSpace(answer.Text()),
		})
	})
	return faqs
}

// ExtractSocials scans every anchor in the homepage HTML and classifies it by
// substring match against known social domains. The last occurrence per
// platform wins.
func ExtractSocials(html string) map[string]string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return map[string]string{}
	}
	socials := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		for _, d := range socialDomains {
			if strings.Contains(href, d.needle) {
				socials[d.key] = href
				break
			}
		}
	})
	return socials
}

// ExtractLinks collects every outbound anchor in the homepage HTML, resolved
// absolute against the base URL, deduplicated preserving document order.
func ExtractLinks(baseURL, html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		abs := brand.AbsoluteURL(baseURL, href)
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

// ExtractContacts pulls the first email-shaped and first phone-shaped
// substring out of a contact page's visible text.
func ExtractContacts(html string) map[string]string {
	text := VisibleText(html)
	contacts := make(map[string]string)
	if email := emailPattern.FindString(text); email != "" {
		contacts["email"] = email
	}
	if phone := phonePattern.FindString(text); phone != "" {
		contacts["phone"] = strings.TrimSpace(phone)
	}
	return contacts
}
