// Package memory keeps search history in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// Store implements portal.HistoryStore with a mutex-guarded slice per subject.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]portal.SearchHistoryEntry
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string][]portal.SearchHistoryEntry)}
}

// Record appends entry to its subject's history.
func (s *Store) Record(_ context.Context, entry portal.SearchHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.SubjectID] = append(s.entries[entry.SubjectID], entry)
	return nil
}

// List returns a page of subjectID's history, newest first.
func (s *Store) List(_ context.Context, subjectID string, limit, offset int) (portal.HistoryPage, error) {
	s.mu.RLock()
	all := append([]portal.SearchHistoryEntry(nil), s.entries[subjectID]...)
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	page := portal.HistoryPage{Total: len(all)}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) || limit <= 0 {
		return page, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page.Entries = all[offset:end]
	return page, nil
}
