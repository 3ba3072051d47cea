package storage

import (
	"context"
	"sort"
	"sync"

	"lgpkit/internal/model"
)

type memoryEntry struct {
	record model.SolutionRecord
	seq    int
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	seq         int
	solutions   map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.solutions = make(map[string]memoryEntry)
	return nil
}

func (s *MemoryStore) SaveSolution(_ context.Context, record model.SolutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	seq := s.seq
	if existing, ok := s.solutions[record.ID]; ok {
		seq = existing.seq
	} else {
		s.seq++
	}
	s.solutions[record.ID] = memoryEntry{record: record.Clone(), seq: seq}
	return nil
}

func (s *MemoryStore) GetSolution(_ context.Context, id string) (model.SolutionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.SolutionRecord{}, false, errNotInitialized
	}
	entry, ok := s.solutions[id]
	if !ok {
		return model.SolutionRecord{}, false, nil
	}
	return entry.record.Clone(), true, nil
}

func (s *MemoryStore) ListSolutions(_ context.Context, filter ListFilter) ([]model.SolutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	entries := make([]memoryEntry, 0, len(s.solutions))
	for _, entry := range s.solutions {
		if filter.ProblemKey != "" && entry.record.ProblemKey != filter.ProblemKey {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].record.CreatedAtUTC == entries[j].record.CreatedAtUTC {
			// Prefer later saves for equal timestamps.
			return entries[i].seq > entries[j].seq
		}
		return entries[i].record.CreatedAtUTC > entries[j].record.CreatedAtUTC
	})
	if filter.Limit > 0 && len(entries) > filter.Limit {
		entries = entries[:filter.Limit]
	}

	records := make([]model.SolutionRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entry.record.Clone())
	}
	return records, nil
}

func (s *MemoryStore) DeleteSolution(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return false, errNotInitialized
	}
	_, ok := s.solutions[id]
	delete(s.solutions, id)
	return ok, nil
}
