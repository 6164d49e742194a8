package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/seo-insight/backend/stats"
)

const (
	defaultCacheTTL = 30 * time.Minute
	defaultWorkers  = 5
)

// Config tunes an Analyzer. The zero value gets sensible defaults: 15s
// primary fetch, 5s probes, 30 minute result cache, 5 batch workers.
type Config struct {
	FetchTimeout time.Duration
	ProbeTimeout time.Duration
	UserAgent    string
	CacheTTL     time.Duration
	Workers      int
	Logger       *logrus.Logger
	Stats        *stats.Storage
}

// Analyzer runs the fetch → extract → score → recommend pipeline. The
// pipeline itself is stateless; the only mutable state here is the result
// cache and the fetcher's link-status cache.
type Analyzer struct {
	fetcher *Fetcher
	results *cache.Cache
	workers int
	log     *logrus.Logger
	stats   *stats.Storage
}

// New creates an Analyzer from cfg, filling in defaults for unset fields.
func New(cfg Config) *Analyzer {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Analyzer{
		fetcher: NewFetcher(cfg.FetchTimeout, cfg.ProbeTimeout, cfg.UserAgent, cfg.Logger),
		results: cache.New(cfg.CacheTTL, cfg.CacheTTL),
		workers: cfg.Workers,
		log:     cfg.Logger,
		stats:   cfg.Stats,
	}
}

// ValidateURL rejects input that does not parse with a scheme and a host,
// before any network call is made.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, newError(KindValidation, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, newError(KindValidation, raw, fmt.Errorf("URL must include a scheme and a host"))
	}
	return u, nil
}

// Analyze fetches one URL and produces its full report. Results are cached
// for the configured TTL, keyed by the exact input URL. A failed primary
// fetch is terminal for this URL; auxiliary probe failures only default the
// corresponding Profile fields.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Report, error) {
	pageURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	if cached, found := a.results.Get(rawURL); found {
		a.trackCache(true)
		return cached.(*Report), nil
	}
	a.trackCache(false)

	start := time.Now()
	report, err := a.analyze(ctx, rawURL, pageURL)
	a.trackAnalysis(time.Since(start), err != nil)
	if err != nil {
		a.log.WithFields(logrus.Fields{"url": rawURL, "error": err}).Warn("analysis failed")
		return nil, err
	}

	a.results.SetDefault(rawURL, report)
	a.log.WithFields(logrus.Fields{
		"url":      rawURL,
		"score":    report.Score,
		"findings": len(report.Recommendations),
		"duration": time.Since(start),
	}).Info("analysis complete")
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, rawURL string, pageURL *url.URL) (*Report, error) {
	raw, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		return nil, newError(KindInternal, rawURL, err)
	}

	ext := Extract(doc, pageURL)
	p := ext.Profile
	p.ResponseTime = raw.ResponseTime.Seconds()
	p.StatusCode = raw.StatusCode
	p.ContentLength = len(raw.Body)
	p.Timestamp = raw.FetchedAt.Format(time.RFC3339)

	a.probe(ctx, pageURL, ext)

	score := Score(p)
	recs, priorities := Recommend(p, score)
	return &Report{
		Profile:         p,
		Score:           score,
		Recommendations: recs,
		Priorities:      priorities,
	}, nil
}

// probe fills in the network-backed Profile fields. Each probe is
// independently best-effort; a failure leaves the field at its default.
func (a *Analyzer) probe(ctx context.Context, pageURL *url.URL, ext *Extraction) {
	p := ext.Profile
	base := &url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host}

	robots := a.fetcher.ProbeRobots(ctx, base)
	if robots.Exists {
		p.RobotsTxtExists = true
		content := robots.Content
		p.RobotsTxtContent = &content
		p.SitemapInRobots = strings.Contains(strings.ToLower(content), "sitemap")
	}

	p.SitemapExists = a.fetcher.ProbeSitemap(ctx, base).Exists

	linkCheck := a.fetcher.CheckLinks(ctx, ext.Links)
	p.CheckedLinks = linkCheck.Checked
	p.BrokenLinks = linkCheck.Broken

	p.LargeImages = a.fetcher.AuditImages(ctx, base, ext.ImageSrcs).Large
}

// Compare analyzes two URLs strictly sequentially and pairs the reports.
func (a *Analyzer) Compare(ctx context.Context, first, second string) (*Comparison, error) {
	r1, err := a.Analyze(ctx, first)
	if err != nil {
		return nil, err
	}
	r2, err := a.Analyze(ctx, second)
	if err != nil {
		return nil, err
	}
	return &Comparison{First: r1, Second: r2}, nil
}

// IsCached reports whether a fresh result exists for the URL.
func (a *Analyzer) IsCached(rawURL string) bool {
	_, found := a.results.Get(rawURL)
	return found
}

// ClearCache drops all cached reports.
func (a *Analyzer) ClearCache() {
	a.results.Flush()
}

func (a *Analyzer) trackCache(hit bool) {
	if a.stats == nil {
		return
	}
	if hit {
		a.stats.RecordCacheHit()
	} else {
		a.stats.RecordCacheMiss()
	}
}

func (a *Analyzer) trackAnalysis(d time.Duration, failed bool) {
	if a.stats == nil {
		return
	}
	a.stats.RecordAnalysis(d, failed)
}
