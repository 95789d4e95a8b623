package leaderboard

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry // userID -> Entry
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]Entry)}
}

func (r *memoryRepository) GetEntry(_ context.Context, userID string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (r *memoryRepository) SaveEntry(_ context.Context, entry Entry) (*Entry, error) {
	score, err := Score(entry)
	if err != nil {
		return nil, err
	}
	entry.Score = score

	r.mu.Lock()
	r.entries[entry.UserID] = entry
	r.mu.Unlock()

	return &entry, nil
}

func (r *memoryRepository) CountFocusTimeAbove(_ context.Context, minutes int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries {
		if entry.TotalFocusTime > minutes {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) TopByScore(_ context.Context, limit int) ([]Entry, error) {
	r.mu.RLock()
	snapshot := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		snapshot = append(snapshot, entry)
	}
	r.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Score > snapshot[j].Score
	})

	if limit > 0 && limit < len(snapshot) {
		snapshot = snapshot[:limit]
	}
	return snapshot, nil
}
