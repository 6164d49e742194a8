package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// batchErrMessage is the error recorded for a URL whose analysis failed.
// The real cause is logged; the record stays uniform for consumers.
const batchErrMessage = "Failed to retrieve metadata"

// AnalyzeBatch runs the full pipeline over every URL with a bounded worker
// pool. It always returns one item per input URL; a failure (or panic) on
// one URL becomes that URL's error record and never aborts the others.
// Item order follows completion, not input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, urls []string) []BatchItem {
	if len(urls) == 0 {
		return nil
	}

	jobs := make(chan string)
	results := make(chan BatchItem, len(urls))

	var wg sync.WaitGroup
	workers := a.workers
	if len(urls) < workers {
		workers = len(urls)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				results <- a.analyzeItem(ctx, u)
			}
		}()
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
	close(results)

	items := make([]BatchItem, 0, len(urls))
	for item := range results {
		items = append(items, item)
	}
	return items
}

// analyzeItem wraps one URL's analysis so that neither an error nor a panic
// can escape into the pool.
func (a *Analyzer) analyzeItem(ctx context.Context, u string) (item BatchItem) {
	defer func() {
		if r := recover(); r != nil {
			a.log.WithFields(logrus.Fields{"url": u, "panic": r}).Error("analysis panicked")
			item = BatchItem{URL: u, Error: fmt.Sprintf("%v", r)}
		}
	}()

	report, err := a.Analyze(ctx, u)
	if err != nil {
		return BatchItem{URL: u, Error: batchErrMessage}
	}
	return BatchItem{URL: u, Profile: report.Profile, Score: report.Score}
}
