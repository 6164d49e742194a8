package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer() *Analyzer {
	return New(Config{
		FetchTimeout: 2 * time.Second,
		ProbeTimeout: 2 * time.Second,
		Logger:       discardLogger(),
	})
}

// testSite serves a small but complete site: a page, robots.txt, sitemap.xml
// and the pages the broken-link sampler probes.
func testSite(t *testing.T, pageHits *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if pageHits != nil {
			atomic.AddInt64(pageHits, 1)
		}
		fmt.Fprint(w, `<html lang="en"><head>
<title>Test Site Home Page With A Reasonable Title</title>
<meta name="description" content="A home page served from a test fixture, long enough to look like a real description written by an actual person for search results.">
<meta name="viewport" content="width=device-width">
</head><body>
<h1>Welcome</h1>
<h2>News</h2>
<a href="/ok">fine</a>
<a href="/missing">gone</a>
<p>Some body text for the analyzer to read.</p>
</body></html>`)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nSitemap: /sitemap.xml\n")
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(mux)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com", false},
		{"http with path", "http://example.com/page?q=1", false},
		{"missing scheme", "example.com", true},
		{"missing host", "https://", true},
		{"empty", "", true},
		{"garbage", "://nope", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				kind, ok := ErrKind(err)
				require.True(t, ok)
				assert.Equal(t, KindValidation, kind)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	srv := testSite(t, nil)
	defer srv.Close()

	report, err := newTestAnalyzer().Analyze(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	p := report.Profile

	require.NotNil(t, p.Title)
	assert.Equal(t, "Test Site Home Page With A Reasonable Title", *p.Title)
	assert.Equal(t, http.StatusOK, p.StatusCode)
	assert.Greater(t, p.ResponseTime, 0.0)
	assert.Greater(t, p.ContentLength, 0)
	assert.NotEmpty(t, p.Timestamp)

	assert.True(t, p.RobotsTxtExists)
	require.NotNil(t, p.RobotsTxtContent)
	assert.Contains(t, *p.RobotsTxtContent, "User-agent")
	assert.True(t, p.SitemapInRobots)
	assert.True(t, p.SitemapExists)

	assert.Equal(t, 2, p.CheckedLinks)
	assert.Equal(t, 1, p.BrokenLinks)
	assert.False(t, p.IsHTTPS)

	assert.GreaterOrEqual(t, report.Score, 0)
	assert.LessOrEqual(t, report.Score, 100)
	assert.Len(t, report.Priorities, len(report.Recommendations))

	var issues []string
	for _, r := range report.Recommendations {
		issues = append(issues, r.Issue)
	}
	assert.Contains(t, issues, "Not Using HTTPS")
	assert.Contains(t, issues, "Broken Links Detected")
}

func TestAnalyzeCachesResults(t *testing.T) {
	var pageHits int64
	srv := testSite(t, &pageHits)
	defer srv.Close()

	a := newTestAnalyzer()
	target := srv.URL + "/"

	first, err := a.Analyze(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, a.IsCached(target))

	second, err := a.Analyze(context.Background(), target)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&pageHits))

	a.ClearCache()
	assert.False(t, a.IsCached(target))

	_, err = a.Analyze(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&pageHits))
}

func TestAnalyzeInvalidURLNoNetwork(t *testing.T) {
	a := newTestAnalyzer()
	_, err := a.Analyze(context.Background(), "not a url")
	require.Error(t, err)
	kind, ok := ErrKind(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, kind)
}

func TestAnalyzeFailedFetchNotCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestAnalyzer()
	_, err := a.Analyze(context.Background(), srv.URL)
	require.Error(t, err)
	assert.False(t, a.IsCached(srv.URL))
}

func TestCompare(t *testing.T) {
	srv := testSite(t, nil)
	defer srv.Close()

	a := newTestAnalyzer()
	cmp, err := a.Compare(context.Background(), srv.URL+"/", srv.URL+"/?v=2")
	require.NoError(t, err)
	require.NotNil(t, cmp.First)
	require.NotNil(t, cmp.Second)
	assert.Equal(t, cmp.First.Score, cmp.Second.Score)
}

func TestCompareFirstFailureAborts(t *testing.T) {
	srv := testSite(t, nil)
	defer srv.Close()

	a := newTestAnalyzer()
	_, err := a.Compare(context.Background(), "bad", srv.URL+"/")
	require.Error(t, err)
}
