package analyzer

import "strings"

// Profile is the structured SEO extraction result for one URL. It is
// produced once per successful fetch and never mutated afterwards; the
// scorer, recommender and any presentation layer all read from it.
type Profile struct {
	URL                   string              `json:"url"`
	Title                 *string             `json:"title"`
	TitleLength           int                 `json:"title_length"`
	MetaDescription       string              `json:"meta_description"`
	MetaDescriptionLength int                 `json:"meta_description_length"`
	MetaKeywords          string              `json:"meta_keywords"`
	OGTags                map[string]string   `json:"og_tags"`
	TwitterTags           map[string]string   `json:"twitter_tags"`
	Headings              map[string][]string `json:"headings"`
	ImagesTotal           int                 `json:"images_total"`
	ImagesWithAlt         int                 `json:"images_with_alt"`
	ImagesWithoutAlt      int                 `json:"images_without_alt"`
	LargeImages           int                 `json:"large_images"`
	InternalLinksCount    int                 `json:"internal_links_count"`
	ExternalLinksCount    int                 `json:"external_links_count"`
	BrokenLinks           int                 `json:"broken_links"`
	CheckedLinks          int                 `json:"checked_links"`
	HasSchema             bool                `json:"has_schema"`
	SchemaCount           int                 `json:"schema_count"`
	CanonicalURL          *string             `json:"canonical_url"`
	RobotsMeta            string              `json:"robots_meta"`
	RobotsTxtExists       bool                `json:"robots_txt_exists"`
	RobotsTxtContent      *string             `json:"robots_txt_content"`
	SitemapExists         bool                `json:"sitemap_exists"`
	SitemapInRobots       bool                `json:"sitemap_in_robots"`
	IsMobileFriendly      bool                `json:"is_mobile_friendly"`
	IsHTTPS               bool                `json:"is_https"`
	PageLanguage          *string             `json:"page_language"`
	ReadabilityScore      float64             `json:"readability_score"`
	TextContent           string              `json:"text_content"`
	ResponseTime          float64             `json:"response_time"`
	StatusCode            int                 `json:"status_code"`
	ContentLength         int                 `json:"content_length"`
	Timestamp             string              `json:"timestamp"`
}

// WordCount returns the number of whitespace-separated words in the
// extracted text content.
func (p *Profile) WordCount() int {
	if p.TextContent == "" {
		return 0
	}
	return len(strings.Fields(p.TextContent))
}

// HasTitle reports whether the page carried a non-empty title tag.
func (p *Profile) HasTitle() bool {
	return p.Title != nil && *p.Title != ""
}

// H1Count is a convenience accessor used by the scorer and recommender.
func (p *Profile) H1Count() int {
	return len(p.Headings["h1"])
}

// Recommendation categories, ordered by severity.
const (
	CategoryCritical    = "Critical"
	CategoryImportant   = "Important"
	CategoryRecommended = "Recommended"
)

// Recommendation impact levels.
const (
	ImpactHigh   = "High"
	ImpactMedium = "Medium"
	ImpactLow    = "Low"
)

// Recommendation is a single actionable finding derived from a Profile.
type Recommendation struct {
	Category       string `json:"category"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact"`
}

// Report bundles everything the presentation layer needs for one URL.
type Report struct {
	Profile         *Profile         `json:"profile"`
	Score           int              `json:"seo_score"`
	Recommendations []Recommendation `json:"recommendations"`
	Priorities      []string         `json:"priorities"`
}

// BatchItem is one entry of a bulk analysis: either a scored profile or a
// per-URL error record. A failed URL never affects the other items.
type BatchItem struct {
	URL     string   `json:"url"`
	Profile *Profile `json:"profile,omitempty"`
	Score   int      `json:"seo_score"`
	Error   string   `json:"error,omitempty"`
}

// Comparison holds two full reports analyzed back to back.
type Comparison struct {
	First  *Report `json:"first"`
	Second *Report `json:"second"`
}
