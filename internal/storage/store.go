// Package storage provides read-only report sources for the API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hakim/scanreports/internal/models"
	"github.com/hakim/scanreports/internal/sample"
)

// ErrNotFound is returned when no report matches a lookup.
var ErrNotFound = errors.New("report not found")

// Provider is a read-only source of reports.
type Provider interface {
	// Get returns the report with the given id or ErrNotFound.
	Get(ctx context.Context, id int) (Entry, error)
	// Latest returns the report with the highest id or ErrNotFound when empty.
	Latest(ctx context.Context) (Entry, error)
	// List returns up to limit reports, newest first, after skipping skip of
	// them, along with the total number of reports.
	List(ctx context.Context, skip, limit int) ([]Entry, int, error)
}

// Entry pairs a report with the id it is served under.
type Entry struct {
	ID     int           `json:"id" yaml:"id"`
	Report models.Report `json:"report" yaml:"report"`
}

// MemoryStore serves a fixed set of reports held in memory
type MemoryStore struct {
	entries []Entry // sorted by ID descending
	byID    map[int]int
}

// NewMemoryStore builds a store from entries. Explicit IDs are kept as given;
// duplicate or negative ones are rejected. Entries with a zero ID are numbered
// by their 1-based position, or the next free ID above it when an explicit
// entry already holds that position.
func NewMemoryStore(entries []Entry) (*MemoryStore, error) {
	s := &MemoryStore{
		entries: make([]Entry, 0, len(entries)),
		byID:    make(map[int]int, len(entries)),
	}

	// Explicit ids first so positional ones can step around them
	seen := make(map[int]bool, len(entries))
	for i, e := range entries {
		if e.ID == 0 {
			continue
		}
		if e.ID < 0 {
			return nil, fmt.Errorf("entry %d: invalid report id %d", i, e.ID)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("entry %d: duplicate report id %d", i, e.ID)
		}
		seen[e.ID] = true
	}

	for i, e := range entries {
		if e.ID == 0 {
			id := i + 1
			for seen[id] {
				id++
			}
			e.ID = id
			seen[id] = true
		}
		s.entries = append(s.entries, e)
	}

	// Newest (highest id) first
	sort.Slice(s.entries, func(i, j int) bool {
		return s.entries[i].ID > s.entries[j].ID
	})
	for i, e := range s.entries {
		s.byID[e.ID] = i
	}

	return s, nil
}

// NewSampleStore returns a store holding only the sample report under id 1.
func NewSampleStore(scannedAt time.Time) *MemoryStore {
	s, _ := NewMemoryStore([]Entry{{ID: 1, Report: sample.Report(scannedAt)}})
	return s
}

// Get retrieves a report by id
func (s *MemoryStore) Get(ctx context.Context, id int) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	idx, ok := s.byID[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return s.entries[idx], nil
}

// Latest retrieves the most recent report
func (s *MemoryStore) Latest(ctx context.Context) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	if len(s.entries) == 0 {
		return Entry{}, ErrNotFound
	}
	return s.entries[0], nil
}

// List retrieves one page of reports, newest first.
// A negative skip is treated as zero and a non-positive limit yields an empty page.
func (s *MemoryStore) List(ctx context.Context, skip, limit int) ([]Entry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	total := len(s.entries)
	if skip < 0 {
		skip = 0
	}
	if skip >= total || limit <= 0 {
		return []Entry{}, total, nil
	}

	end := skip + limit
	if end > total || end < skip {
		end = total
	}

	page := make([]Entry, end-skip)
	copy(page, s.entries[skip:end])
	return page, total, nil
}

// Len returns the number of stored reports
func (s *MemoryStore) Len() int {
	return len(s.entries)
}
