// Package history keeps the append-only log of past analyses. It is owned
// by the server layer; the analysis pipeline never reads or writes it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one line of the history: enough to rebuild the history table
// without keeping whole profiles around.
type Entry struct {
	URL   string `json:"url"`
	Score int    `json:"seo_score"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Log is an append-only history persisted as a JSON file. Saves go through
// a temp file and atomic rename.
type Log struct {
	mutex    sync.RWMutex
	entries  []Entry
	filePath string
}

// Open loads the history file under dataDir, creating the directory if
// needed. A missing file is an empty history, not an error.
func Open(dataDir string) (*Log, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	l := &Log{filePath: filepath.Join(dataDir, "history.json")}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return l, nil
}

// Append records one analysis and persists the log.
func (l *Log) Append(url string, score int, title *string) error {
	titleText := "N/A"
	if title != nil && *title != "" {
		titleText = *title
		if len(titleText) > 50 {
			titleText = titleText[:50]
		}
	}

	l.mutex.Lock()
	l.entries = append(l.entries, Entry{
		URL:   url,
		Score: score,
		Title: titleText,
		Date:  time.Now().Format("2006-01-02 15:04:05"),
	})
	l.mutex.Unlock()

	return l.save()
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of recorded analyses.
func (l *Log) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.entries)
}

// Clear empties the history and persists the empty log.
func (l *Log) Clear() error {
	l.mutex.Lock()
	l.entries = nil
	l.mutex.Unlock()
	return l.save()
}

func (l *Log) save() error {
	l.mutex.RLock()
	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	l.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tempFile := l.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, l.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
