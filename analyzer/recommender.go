package analyzer

import "fmt"

// Recommend evaluates the fixed rule sequence against a Profile and returns
// the findings plus a parallel list of their category labels. The rule order
// is the display order and must not change. Stateless and deterministic:
// the same Profile always yields the identical list.
func Recommend(p *Profile, score int) ([]Recommendation, []string) {
	if p == nil {
		return nil, nil
	}

	var recs []Recommendation
	var priorities []string
	add := func(r Recommendation) {
		recs = append(recs, r)
		priorities = append(priorities, r.Category)
	}

	// 1. Title
	if !p.HasTitle() {
		add(Recommendation{
			Category:       CategoryCritical,
			Issue:          "Missing Title Tag",
			Recommendation: "Add a descriptive title tag (30-60 characters) that includes your primary keyword.",
			Impact:         ImpactHigh,
		})
	} else if p.TitleLength < 30 {
		add(Recommendation{
			Category:       CategoryImportant,
			Issue:          "Title Too Short",
			Recommendation: fmt.Sprintf("Expand your title tag from %d to 30-60 characters for better SEO.", p.TitleLength),
			Impact:         ImpactMedium,
		})
	} else if p.TitleLength > 60 {
		add(Recommendation{
			Category:       CategoryImportant,
			Issue:          "Title Too Long",
			Recommendation: fmt.Sprintf("Shorten your title tag from %d to 30-60 characters to avoid truncation.", p.TitleLength),
			Impact:         ImpactMedium,
		})
	}

	// 2. Meta description
	if p.MetaDescription == "" {
		add(Recommendation{
			Category:       CategoryCritical,
			Issue:          "Missing Meta Description",
			Recommendation: "Add a compelling meta description (120-160 characters) to improve click-through rates.",
			Impact:         ImpactHigh,
		})
	} else if p.MetaDescriptionLength < 120 {
		add(Recommendation{
			Category:       CategoryImportant,
			Issue:          "Meta Description Too Short",
			Recommendation: fmt.Sprintf("Expand your meta description from %d to 120-160 characters.", p.MetaDescriptionLength),
			Impact:         ImpactMedium,
		})
	}

	// 3. H1 structure
	if h1 := p.H1Count(); h1 == 0 {
		add(Recommendation{
			Category:       CategoryCritical,
			Issue:          "No H1 Tag",
			Recommendation: "Add exactly one H1 tag with your primary keyword to improve SEO structure.",
			Impact:         ImpactHigh,
		})
	} else if h1 > 1 {
		add(Recommendation{
			Category:       CategoryImportant,
			Issue:          "Multiple H1 Tags",
			Recommendation: fmt.Sprintf("Reduce H1 tags from %d to 1. Use H2-H6 for subheadings.", h1),
			Impact:         ImpactMedium,
		})
	}

	// 4. Image alt coverage below 80%
	if p.ImagesTotal > 0 {
		if ratio := float64(p.ImagesWithAlt) / float64(p.ImagesTotal); ratio < 0.8 {
			add(Recommendation{
				Category:       CategoryImportant,
				Issue:          "Missing Alt Text on Images",
				Recommendation: fmt.Sprintf("Add alt text to %d images for better accessibility and SEO.", p.ImagesWithoutAlt),
				Impact:         ImpactMedium,
			})
		}
	}

	// 5. Mobile friendliness
	if !p.IsMobileFriendly {
		add(Recommendation{
			Category:       CategoryCritical,
			Issue:          "Not Mobile-Friendly",
			Recommendation: "Add a viewport meta tag to make your site mobile-responsive.",
			Impact:         ImpactHigh,
		})
	}

	// 6. HTTPS
	if !p.IsHTTPS {
		add(Recommendation{
			Category:       CategoryCritical,
			Issue:          "Not Using HTTPS",
			Recommendation: "Migrate to HTTPS to improve security and SEO rankings.",
			Impact:         ImpactHigh,
		})
	}

	// 7. Schema markup
	if !p.HasSchema {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "No Schema Markup",
			Recommendation: "Add structured data (JSON-LD) to help search engines understand your content.",
			Impact:         ImpactLow,
		})
	}

	// 8. Canonical URL
	if p.CanonicalURL == nil || *p.CanonicalURL == "" {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "No Canonical URL",
			Recommendation: "Add a canonical URL to prevent duplicate content issues.",
			Impact:         ImpactLow,
		})
	}

	// 9. Content length
	if wc := p.WordCount(); wc < 300 {
		add(Recommendation{
			Category:       CategoryImportant,
			Issue:          "Low Content Length",
			Recommendation: fmt.Sprintf("Increase content from %d to at least 300 words for better SEO.", wc),
			Impact:         ImpactMedium,
		})
	}

	// 10. robots.txt
	if !p.RobotsTxtExists {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "No robots.txt File",
			Recommendation: "Create a robots.txt file to guide search engine crawlers.",
			Impact:         ImpactLow,
		})
	}

	// 11. Sitemap
	if !p.SitemapExists {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "No Sitemap.xml",
			Recommendation: "Create a sitemap.xml file to help search engines index your pages.",
			Impact:         ImpactLow,
		})
	}

	// 12. Broken links above 10% of the checked sample
	if p.CheckedLinks > 0 {
		if ratio := float64(p.BrokenLinks) / float64(p.CheckedLinks); ratio > 0.1 {
			add(Recommendation{
				Category:       CategoryImportant,
				Issue:          "Broken Links Detected",
				Recommendation: fmt.Sprintf("Fix %d broken links found in sample check.", p.BrokenLinks),
				Impact:         ImpactMedium,
			})
		}
	}

	// 13. Large images
	if p.LargeImages > 0 {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "Large Images Detected",
			Recommendation: fmt.Sprintf("Optimize %d large images (>500KB) to improve page speed.", p.LargeImages),
			Impact:         ImpactLow,
		})
	}

	// 14. Open Graph tags
	if len(p.OGTags) == 0 {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "No Open Graph Tags",
			Recommendation: "Add Open Graph tags to improve social media sharing appearance.",
			Impact:         ImpactLow,
		})
	}

	// 15. Readability
	if p.ReadabilityScore > 0 && p.ReadabilityScore < 30 {
		add(Recommendation{
			Category:       CategoryRecommended,
			Issue:          "Low Readability Score",
			Recommendation: fmt.Sprintf("Improve content readability (current: %.1f). Use simpler language and shorter sentences.", p.ReadabilityScore),
			Impact:         ImpactLow,
		})
	}

	return recs, priorities
}
