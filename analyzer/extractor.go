package analyzer

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is the pure result of parsing a fetched page: the DOM-derived
// Profile fields plus the raw material the fetcher's auxiliary probes need
// (resolved links and image sources).
type Extraction struct {
	Profile *Profile

	// Links is the deduplicated union of internal and external links in
	// first-seen document order, used for the broken-link sample.
	Links []string

	// ImageSrcs holds the non-empty src attributes in document order.
	ImageSrcs []string
}

// Extract derives an SEO Profile from a parsed document. It is a pure
// function of the DOM and the page URL; the probe-backed fields
// (robots/sitemap/broken links/large images) are left at their defaults for
// the caller to fill in. The document is consumed: text extraction removes
// the script/style/nav/header/footer subtrees.
func Extract(doc *goquery.Document, pageURL *url.URL) *Extraction {
	p := &Profile{
		URL:         pageURL.String(),
		OGTags:      map[string]string{},
		TwitterTags: map[string]string{},
		Headings:    map[string][]string{"h1": {}, "h2": {}, "h3": {}},
		IsHTTPS:     pageURL.Scheme == "https",
	}

	// Title: first <title>, trimmed. Absent tag means nil, not empty.
	if title := doc.Find("title"); title.Length() > 0 {
		t := strings.TrimSpace(title.First().Text())
		p.Title = &t
		p.TitleLength = utf8.RuneCountInString(t)
	}

	// Meta mapping keyed by lowercased name, falling back to property.
	// Later duplicates overwrite earlier ones in document order.
	metaInfo := map[string]string{}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		content, _ := s.Attr("content")

		key := strings.ToLower(name)
		if key == "" {
			key = strings.ToLower(property)
		}
		if key != "" && content != "" {
			metaInfo[key] = content
		}

		if strings.HasPrefix(property, "og:") {
			p.OGTags[property] = content
		}
		if strings.HasPrefix(name, "twitter:") {
			p.TwitterTags[name] = content
		}
	})
	p.MetaDescription = metaInfo["description"]
	p.MetaDescriptionLength = utf8.RuneCountInString(p.MetaDescription)
	p.MetaKeywords = metaInfo["keywords"]
	p.RobotsMeta = metaInfo["robots"]

	for _, level := range []string{"h1", "h2", "h3"} {
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			p.Headings[level] = append(p.Headings[level], strings.TrimSpace(s.Text()))
		})
	}

	ext := &Extraction{Profile: p}

	// Images: alt counts only when present and non-empty.
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		p.ImagesTotal++
		if alt, ok := s.Attr("alt"); ok && alt != "" {
			p.ImagesWithAlt++
		}
		if src, ok := s.Attr("src"); ok && src != "" {
			ext.ImageSrcs = append(ext.ImageSrcs, src)
		}
	})
	p.ImagesWithoutAlt = p.ImagesTotal - p.ImagesWithAlt

	extractLinks(doc, pageURL, ext)

	p.SchemaCount = doc.Find(`script[type="application/ld+json"]`).Length()
	p.HasSchema = p.SchemaCount > 0

	if canonical := doc.Find(`link[rel="canonical"]`); canonical.Length() > 0 {
		if href, ok := canonical.First().Attr("href"); ok {
			p.CanonicalURL = &href
		}
	}

	p.IsMobileFriendly = doc.Find(`meta[name="viewport"]`).Length() > 0

	if htmlLang := doc.Find("html[lang]"); htmlLang.Length() > 0 {
		if lang, ok := htmlLang.First().Attr("lang"); ok {
			p.PageLanguage = &lang
		}
	}

	// Text content last: stripping the boilerplate subtrees mutates the
	// document, and headings inside <nav> or <header> must already have
	// been counted.
	doc.Find("script, style, nav, header, footer").Remove()
	p.TextContent = strings.Join(strings.Fields(doc.Text()), " ")

	p.ReadabilityScore = FleschReadingEase(truncateRunes(p.TextContent, readabilitySampleLimit))

	return ext
}

// extractLinks resolves every href against the page's scheme://host base and
// classifies it by network location only: same host (including port) means
// internal, regardless of scheme. Counts are over the deduplicated sets.
func extractLinks(doc *goquery.Document, pageURL *url.URL, ext *Extraction) {
	base := &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host}
	internal := map[string]struct{}{}
	external := map[string]struct{}{}
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			// Malformed hrefs are skipped, never an error.
			return
		}
		abs := base.ResolveReference(ref).String()
		resolved, err := url.Parse(abs)
		if err != nil {
			return
		}
		if resolved.Host == pageURL.Host {
			internal[abs] = struct{}{}
		} else {
			external[abs] = struct{}{}
		}
		if _, dup := seen[abs]; !dup {
			seen[abs] = struct{}{}
			ext.Links = append(ext.Links, abs)
		}
	})

	ext.Profile.InternalLinksCount = len(internal)
	ext.Profile.ExternalLinksCount = len(external)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
