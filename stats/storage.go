// Package stats persists service usage counters so operators can see how
// the analyzer is being used across restarts.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MonthlyStats aggregates pipeline activity for one calendar month.
type MonthlyStats struct {
	Analyses      int       `json:"analyses"`
	Errors        int       `json:"errors"`
	CacheHits     int       `json:"cache_hits"`
	CacheMisses   int       `json:"cache_misses"`
	TotalDuration float64   `json:"total_duration_seconds"`
	LastUpdated   time.Time `json:"last_updated"`
}

// AverageDuration is the mean analysis wall-clock time in seconds.
func (m MonthlyStats) AverageDuration() float64 {
	if m.Analyses == 0 {
		return 0
	}
	return m.TotalDuration / float64(m.Analyses)
}

// ErrorRate is the fraction of analyses that failed, as a percentage.
func (m MonthlyStats) ErrorRate() float64 {
	if m.Analyses == 0 {
		return 0
	}
	return float64(m.Errors) / float64(m.Analyses) * 100
}

// Storage keeps per-month counters and writes them to a JSON file in the
// background. Writes go through a temp file and rename so a crash never
// leaves a truncated stats file.
type Storage struct {
	mutex     sync.RWMutex
	months    map[string]*MonthlyStats // key: "YYYY-MM"
	filePath  string
	lastWrite time.Time
	writeReq  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewStorage creates the data directory if needed, loads any existing stats
// file, and starts the background writer.
func NewStorage(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		months:   make(map[string]*MonthlyStats),
		filePath: filepath.Join(dataDir, "stats.json"),
		writeReq: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()
	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return json.Unmarshal(data, &s.months)
}

func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.months)
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) backgroundWriter() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeReq:
			s.save()
		case <-ticker.C:
			s.save()
		case <-s.done:
			s.save()
			return
		}
	}
}

func (s *Storage) requestWrite() {
	select {
	case s.writeReq <- struct{}{}:
	default:
		// write already pending
	}
}

func currentMonth() string {
	return time.Now().Format("2006-01")
}

func (s *Storage) month(key string) *MonthlyStats {
	m, ok := s.months[key]
	if !ok {
		m = &MonthlyStats{}
		s.months[key] = m
	}
	return m
}

// RecordAnalysis adds one finished analysis (successful or not) to the
// current month.
func (s *Storage) RecordAnalysis(d time.Duration, failed bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := s.month(currentMonth())
	m.Analyses++
	if failed {
		m.Errors++
	}
	m.TotalDuration += d.Seconds()
	m.LastUpdated = time.Now()

	if time.Since(s.lastWrite) > time.Minute {
		s.lastWrite = time.Now()
		s.requestWrite()
	}
}

// RecordCacheHit counts a result served from the analysis cache.
func (s *Storage) RecordCacheHit() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	m := s.month(currentMonth())
	m.CacheHits++
	m.LastUpdated = time.Now()
}

// RecordCacheMiss counts a result that had to be computed.
func (s *Storage) RecordCacheMiss() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	m := s.month(currentMonth())
	m.CacheMisses++
	m.LastUpdated = time.Now()
}

// CurrentStats returns a copy of this month's counters.
func (s *Storage) CurrentStats() MonthlyStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if m, ok := s.months[currentMonth()]; ok {
		return *m
	}
	return MonthlyStats{}
}

// Months returns every month that has data, newest first.
func (s *Storage) Months() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.months))
	for m := range s.months {
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Cleanup keeps only the current and previous month.
func (s *Storage) Cleanup() {
	now := time.Now()
	keep := map[string]bool{
		now.Format("2006-01"):                   true,
		now.AddDate(0, -1, 0).Format("2006-01"): true,
	}

	s.mutex.Lock()
	for key := range s.months {
		if !keep[key] {
			delete(s.months, key)
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
}

// Shutdown stops the background writer after a final save.
func (s *Storage) Shutdown() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return s.save()
}
