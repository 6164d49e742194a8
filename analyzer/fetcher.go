package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	// Identifying header sent on every request. Some sites serve reduced
	// markup to unknown agents, so this mimics a desktop browser.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	defaultFetchTimeout = 15 * time.Second
	defaultProbeTimeout = 5 * time.Second

	// robots.txt content is truncated to this many characters.
	robotsContentLimit = 500

	// At most this many links are HEAD-probed for the broken-link estimate.
	linkSampleLimit = 10

	// Images above this size (in KB of Content-Length) count as large.
	largeImageKB = 500

	linkCacheTTL = 10 * time.Minute
)

// RawPage is the outcome of the primary fetch: the bytes to parse plus the
// transport-level facts recorded into the Profile.
type RawPage struct {
	URL          string
	Body         []byte
	StatusCode   int
	ResponseTime time.Duration
	FetchedAt    time.Time
}

// RobotsProbe is the best-effort robots.txt lookup. Failed distinguishes a
// probe that errored out from a site that genuinely has no robots.txt.
type RobotsProbe struct {
	Exists  bool
	Content string
	Failed  bool
}

// SitemapProbe is the best-effort /sitemap.xml HEAD check.
type SitemapProbe struct {
	Exists bool
	Failed bool
}

// LinkCheck summarizes the sampled broken-link probes. Checked counts every
// attempted probe, including the ones that failed outright.
type LinkCheck struct {
	Checked int
	Broken  int
}

// ImageAudit summarizes the per-image Content-Length probes.
type ImageAudit struct {
	Large  int
	Probed int
	Failed int
}

// Fetcher retrieves a page and its auxiliary signals. The primary fetch is
// the only call allowed to fail the analysis; every probe is best-effort.
type Fetcher struct {
	client    *http.Client
	probes    *http.Client
	userAgent string
	linkCache *cache.Cache
	log       *logrus.Logger
}

// NewFetcher builds a Fetcher with a pooled transport shared between the
// primary client and the shorter-deadline probe client.
func NewFetcher(fetchTimeout, probeTimeout time.Duration, userAgent string, log *logrus.Logger) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: fetchTimeout, Transport: transport},
		probes:    &http.Client{Timeout: probeTimeout, Transport: transport},
		userAgent: userAgent,
		linkCache: cache.New(linkCacheTTL, linkCacheTTL),
		log:       log,
	}
}

// Fetch issues the primary GET, following redirects. Any network failure or
// a terminal status >= 400 is returned as an AnalysisError and no partial
// page is produced. ResponseTime covers this call only, never the probes.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, newError(KindFetch, pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(KindTimeout, pageURL, err)
		}
		return nil, newError(KindFetch, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, newError(KindFetch, pageURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(KindTimeout, pageURL, err)
		}
		return nil, newError(KindFetch, pageURL, err)
	}
	elapsed := time.Since(start)

	return &RawPage{
		URL:          pageURL,
		Body:         body,
		StatusCode:   resp.StatusCode,
		ResponseTime: elapsed,
		FetchedAt:    time.Now(),
	}, nil
}

// ProbeRobots fetches {base}/robots.txt and keeps the first 500 characters
// when the file exists.
func (f *Fetcher) ProbeRobots(ctx context.Context, base *url.URL) RobotsProbe {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	resp, err := f.probeDo(ctx, http.MethodGet, robotsURL)
	if err != nil {
		f.log.WithFields(logrus.Fields{"url": robotsURL, "error": err}).Debug("robots.txt probe failed")
		return RobotsProbe{Failed: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RobotsProbe{}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return RobotsProbe{Failed: true}
	}
	content := string(body)
	if len(content) > robotsContentLimit {
		content = content[:robotsContentLimit]
	}
	return RobotsProbe{Exists: true, Content: content}
}

// ProbeSitemap checks {base}/sitemap.xml with a HEAD request; any 200 counts
// as existing.
func (f *Fetcher) ProbeSitemap(ctx context.Context, base *url.URL) SitemapProbe {
	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	resp, err := f.probeDo(ctx, http.MethodHead, sitemapURL)
	if err != nil {
		f.log.WithFields(logrus.Fields{"url": sitemapURL, "error": err}).Debug("sitemap probe failed")
		return SitemapProbe{Failed: true}
	}
	resp.Body.Close()
	return SitemapProbe{Exists: resp.StatusCode == http.StatusOK}
}

// CheckLinks HEAD-probes up to linkSampleLimit links from the deduplicated
// union of internal and external links, in first-seen document order. A
// probe failure counts as a broken link, matching how a visitor would
// experience it.
func (f *Fetcher) CheckLinks(ctx context.Context, links []string) LinkCheck {
	var result LinkCheck
	for _, link := range links {
		if result.Checked >= linkSampleLimit {
			break
		}
		result.Checked++
		if !f.linkAccessible(ctx, link) {
			result.Broken++
		}
	}
	return result
}

// linkAccessible reports whether a HEAD on the link succeeds with a status
// below 400. Results are cached so repeated analyses of the same site do not
// hammer its neighbors.
func (f *Fetcher) linkAccessible(ctx context.Context, link string) bool {
	if ok, found := f.linkCache.Get(link); found {
		return ok.(bool)
	}
	resp, err := f.probeDo(ctx, http.MethodHead, link)
	accessible := false
	if err == nil {
		accessible = resp.StatusCode < 400
		resp.Body.Close()
	}
	f.linkCache.SetDefault(link, accessible)
	return accessible
}

// AuditImages HEAD-probes every image URL for its Content-Length and counts
// the ones above the large-image threshold. Images without the header, or
// whose probe fails, are simply not counted.
func (f *Fetcher) AuditImages(ctx context.Context, base *url.URL, srcs []string) ImageAudit {
	var audit ImageAudit
	for _, src := range srcs {
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		imgURL := base.ResolveReference(ref).String()
		resp, err := f.probeDo(ctx, http.MethodHead, imgURL)
		if err != nil {
			audit.Failed++
			continue
		}
		audit.Probed++
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if size, err := strconv.Atoi(cl); err == nil && float64(size)/1024.0 > largeImageKB {
				audit.Large++
			}
		}
		resp.Body.Close()
	}
	return audit
}

func (f *Fetcher) probeDo(ctx context.Context, method, probeURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, probeURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	return f.probes.Do(req)
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return false
}
