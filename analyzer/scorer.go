package analyzer

// Score reduces a Profile to an SEO score in [0, 100]. It is deterministic
// and pure: independent weighted components, each with its own band, summed
// and clamped at 100.
//
// The headings component can contribute up to 20 points (15 for a single h1
// plus 5 for having an h2) against its nominal 15-point budget. That is
// long-standing behavior the clamp at the end accounts for; do not rebalance
// it without revisiting every published score.
func Score(p *Profile) int {
	if p == nil {
		return 0
	}

	score := 0

	// Title (15 points)
	if p.HasTitle() {
		switch l := p.TitleLength; {
		case l >= 30 && l <= 60:
			score += 15
		case (l >= 20 && l < 30) || (l > 60 && l <= 70):
			score += 10
		case l > 0:
			score += 5
		}
	}

	// Meta description (15 points)
	switch d := p.MetaDescriptionLength; {
	case d >= 120 && d <= 160:
		score += 15
	case (d >= 100 && d < 120) || (d > 160 && d <= 180):
		score += 10
	case d > 0:
		score += 5
	}

	// Headings (nominally 15 points, see note above)
	switch h1 := p.H1Count(); {
	case h1 == 1:
		score += 15
	case h1 > 1:
		score += 5
	}
	if len(p.Headings["h2"]) > 0 {
		score += 5
	}

	// Image alt coverage (10 points, proportional, floored)
	if p.ImagesTotal > 0 {
		score += int(10 * float64(p.ImagesWithAlt) / float64(p.ImagesTotal))
	}

	// Mobile friendliness (10 points)
	if p.IsMobileFriendly {
		score += 10
	}

	// Schema markup (10 points)
	if p.HasSchema {
		score += 10
	}

	// Canonical URL (5 points)
	if p.CanonicalURL != nil && *p.CanonicalURL != "" {
		score += 5
	}

	// Internal links (5 points, one per five links)
	if p.InternalLinksCount > 0 {
		links := p.InternalLinksCount / 5
		if links > 5 {
			links = 5
		}
		score += links
	}

	// Content length (10 points)
	switch wc := p.WordCount(); {
	case wc >= 300:
		score += 10
	case wc >= 200:
		score += 7
	case wc >= 100:
		score += 4
	}

	if score > 100 {
		score = 100
	}
	return score
}
