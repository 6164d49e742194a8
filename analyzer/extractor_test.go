package analyzer

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html lang="en">
<head>
<title>  Example Product Page for Testing Purposes  </title>
<meta name="description" content="A concise description of the example page used in tests.">
<meta name="keywords" content="seo, testing">
<meta name="robots" content="index, follow">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta property="og:title" content="Example Product">
<meta property="og:image" content="https://example.com/og.png">
<meta name="twitter:card" content="summary">
<link rel="canonical" href="https://example.com/page">
<script type="application/ld+json">{"@type":"Product"}</script>
</head>
<body>
<header><h1>Main Heading</h1></header>
<nav><a href="/about">About</a><a href="/about">About again</a></nav>
<h2>Section</h2>
<h3>Subsection</h3>
<img src="/a.png" alt="first image">
<img src="/b.png" alt="">
<img src="/c.png">
<a href="http://example.com/other">Other</a>
<a href="https://elsewhere.org/x">Elsewhere</a>
<p>Body copy that stays.</p>
<footer>Footer text goes away.</footer>
<script>var hidden = true;</script>
</body>
</html>`

func parsePage(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractBasicFields(t *testing.T) {
	doc := parsePage(t, samplePage)
	ext := Extract(doc, mustURL(t, "https://example.com/page"))
	p := ext.Profile

	require.NotNil(t, p.Title)
	assert.Equal(t, "Example Product Page for Testing Purposes", *p.Title)
	assert.Equal(t, 41, p.TitleLength)

	assert.Equal(t, "A concise description of the example page used in tests.", p.MetaDescription)
	assert.Equal(t, 56, p.MetaDescriptionLength)
	assert.Equal(t, "seo, testing", p.MetaKeywords)
	assert.Equal(t, "index, follow", p.RobotsMeta)

	assert.Equal(t, map[string]string{
		"og:title": "Example Product",
		"og:image": "https://example.com/og.png",
	}, p.OGTags)
	assert.Equal(t, map[string]string{"twitter:card": "summary"}, p.TwitterTags)

	assert.Equal(t, []string{"Main Heading"}, p.Headings["h1"])
	assert.Equal(t, []string{"Section"}, p.Headings["h2"])
	assert.Equal(t, []string{"Subsection"}, p.Headings["h3"])

	assert.True(t, p.HasSchema)
	assert.Equal(t, 1, p.SchemaCount)
	require.NotNil(t, p.CanonicalURL)
	assert.Equal(t, "https://example.com/page", *p.CanonicalURL)
	assert.True(t, p.IsMobileFriendly)
	assert.True(t, p.IsHTTPS)
	require.NotNil(t, p.PageLanguage)
	assert.Equal(t, "en", *p.PageLanguage)
}

func TestExtractImageAltPartition(t *testing.T) {
	doc := parsePage(t, samplePage)
	ext := Extract(doc, mustURL(t, "https://example.com/page"))
	p := ext.Profile

	assert.Equal(t, 3, p.ImagesTotal)
	assert.Equal(t, 1, p.ImagesWithAlt) // empty alt does not count
	assert.Equal(t, 2, p.ImagesWithoutAlt)
	assert.Equal(t, p.ImagesTotal, p.ImagesWithAlt+p.ImagesWithoutAlt)
	assert.Equal(t, []string{"/a.png", "/b.png", "/c.png"}, ext.ImageSrcs)
}

func TestExtractLinkClassification(t *testing.T) {
	doc := parsePage(t, samplePage)
	ext := Extract(doc, mustURL(t, "https://example.com/page"))
	p := ext.Profile

	// Same host counts as internal even when the scheme differs.
	assert.Equal(t, 2, p.InternalLinksCount)
	assert.Equal(t, 1, p.ExternalLinksCount)

	assert.Equal(t, []string{
		"https://example.com/about",
		"http://example.com/other",
		"https://elsewhere.org/x",
	}, ext.Links)
}

func TestExtractTextContentStripsBoilerplate(t *testing.T) {
	doc := parsePage(t, samplePage)
	ext := Extract(doc, mustURL(t, "https://example.com/page"))
	text := ext.Profile.TextContent

	assert.Contains(t, text, "Body copy that stays.")
	assert.Contains(t, text, "Section")
	assert.NotContains(t, text, "About")
	assert.NotContains(t, text, "Main Heading")
	assert.NotContains(t, text, "Footer text")
	assert.NotContains(t, text, "var hidden")
	assert.NotContains(t, text, "@type")
	assert.NotContains(t, text, "  ", "text must be whitespace-normalized")
}

func TestExtractHeadingsInsideRemovedRegions(t *testing.T) {
	// The h1 lives in <header>, which is later stripped for text content.
	// It must still be counted.
	doc := parsePage(t, samplePage)
	ext := Extract(doc, mustURL(t, "https://example.com/page"))
	assert.Equal(t, 1, ext.Profile.H1Count())
}

func TestExtractMinimalPage(t *testing.T) {
	doc := parsePage(t, "<html><body><p>hello</p></body></html>")
	ext := Extract(doc, mustURL(t, "http://example.com/"))
	p := ext.Profile

	assert.Nil(t, p.Title)
	assert.False(t, p.HasTitle())
	assert.Equal(t, 0, p.TitleLength)
	assert.Empty(t, p.MetaDescription)
	assert.Nil(t, p.CanonicalURL)
	assert.Nil(t, p.PageLanguage)
	assert.False(t, p.IsHTTPS)
	assert.False(t, p.IsMobileFriendly)
	assert.Equal(t, "hello", p.TextContent)
	assert.Equal(t, 1, p.WordCount())
}

func TestExtractMetaLastWins(t *testing.T) {
	page := `<html><head>
<meta name="description" content="first">
<meta name="Description" content="second">
<meta name="description" content="">
</head><body></body></html>`
	doc := parsePage(t, page)
	ext := Extract(doc, mustURL(t, "https://example.com/"))

	// Names are lowercased, later values overwrite, empty content ignored.
	assert.Equal(t, "second", ext.Profile.MetaDescription)
}

func TestExtractDuplicateLinksCountedOnce(t *testing.T) {
	page := `<html><body>
<a href="/p">one</a>
<a href="/p">two</a>
<a href="https://example.com/p">three</a>
</body></html>`
	doc := parsePage(t, page)
	ext := Extract(doc, mustURL(t, "https://example.com/"))

	assert.Equal(t, 1, ext.Profile.InternalLinksCount)
	assert.Equal(t, 0, ext.Profile.ExternalLinksCount)
	assert.Equal(t, []string{"https://example.com/p"}, ext.Links)
}
