// Package report serializes analysis results for export: a flat
// metric/value table (CSV) for the full report and a structured JSON dump
// of the Profile.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/seo-insight/backend/analyzer"
)

// Row is one line of the flat report table.
type Row struct {
	Metric string
	Value  string
}

// Rows flattens a report into the metric/value table shown to users, one
// row per metric, in fixed order.
func Rows(r *analyzer.Report) []Row {
	p := r.Profile

	title := "N/A"
	if p.HasTitle() {
		title = *p.Title
	}
	metaDesc := orNA(p.MetaDescription)
	metaKeywords := orNA(p.MetaKeywords)
	canonical := "N/A"
	if p.CanonicalURL != nil && *p.CanonicalURL != "" {
		canonical = *p.CanonicalURL
	}
	language := "N/A"
	if p.PageLanguage != nil {
		language = *p.PageLanguage
	}
	readability := "N/A"
	if p.ReadabilityScore > 0 {
		readability = fmt.Sprintf("%.1f", p.ReadabilityScore)
	}

	return []Row{
		{"URL", p.URL},
		{"Title", title},
		{"Title Length", fmt.Sprintf("%d characters", p.TitleLength)},
		{"Meta Description", metaDesc},
		{"Meta Description Length", fmt.Sprintf("%d characters", p.MetaDescriptionLength)},
		{"Meta Keywords", metaKeywords},
		{"H1 Count", fmt.Sprintf("%d", len(p.Headings["h1"]))},
		{"H2 Count", fmt.Sprintf("%d", len(p.Headings["h2"]))},
		{"H3 Count", fmt.Sprintf("%d", len(p.Headings["h3"]))},
		{"Total Images", fmt.Sprintf("%d", p.ImagesTotal)},
		{"Images with Alt", fmt.Sprintf("%d", p.ImagesWithAlt)},
		{"Images without Alt", fmt.Sprintf("%d", p.ImagesWithoutAlt)},
		{"Large Images", fmt.Sprintf("%d", p.LargeImages)},
		{"Internal Links", fmt.Sprintf("%d", p.InternalLinksCount)},
		{"External Links", fmt.Sprintf("%d", p.ExternalLinksCount)},
		{"Broken Links", fmt.Sprintf("%d/%d", p.BrokenLinks, p.CheckedLinks)},
		{"Mobile Friendly", yesNo(p.IsMobileFriendly)},
		{"HTTPS", yesNo(p.IsHTTPS)},
		{"Schema Markup", yesNo(p.HasSchema)},
		{"Canonical URL", canonical},
		{"Robots.txt", yesNo(p.RobotsTxtExists)},
		{"Sitemap", yesNo(p.SitemapExists)},
		{"Readability Score", readability},
		{"Page Language", language},
		{"Response Time", fmt.Sprintf("%.2fs", p.ResponseTime)},
		{"Status Code", fmt.Sprintf("%d", p.StatusCode)},
		{"Content Length", fmt.Sprintf("%d bytes", p.ContentLength)},
		{"Word Count", fmt.Sprintf("%d", p.WordCount())},
		{"SEO Score", fmt.Sprintf("%d/100", r.Score)},
	}
}

// WriteCSV writes the flat report table with a Metric,Value header.
func WriteCSV(w io.Writer, r *analyzer.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	for _, row := range Rows(r) {
		if err := cw.Write([]string{row.Metric, row.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders the flat report table as a CSV document.
func CSV(r *analyzer.Report) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReadCSV parses a report table previously written by WriteCSV back into
// rows, skipping the header.
func ReadCSV(rd io.Reader) ([]Row, error) {
	records, err := csv.NewReader(rd).ReadAll()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 fields, got %d", i, len(rec))
		}
		rows = append(rows, Row{Metric: rec[0], Value: rec[1]})
	}
	return rows, nil
}

// JSON dumps the Profile as indented JSON, the structured-export form.
func JSON(p *analyzer.Profile) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// ParseJSON reads a Profile back from its structured export.
func ParseJSON(data []byte) (*analyzer.Profile, error) {
	var p analyzer.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
