package region

import (
	"context"
	"sort"
	"sync"

	"region-sync/core/record"

	"github.com/google/uuid"
)

// MemoryStore keeps a region in process memory.
// Fail can be set to simulate an unreachable region.
type MemoryStore struct {
	mu    sync.RWMutex
	label string
	rows  map[uuid.UUID]record.Record
	err   error
	saves int
}

// NewMemoryStore creates an empty in-memory region.
func NewMemoryStore(label string) *MemoryStore {
	return &MemoryStore{label: label, rows: make(map[uuid.UUID]record.Record)}
}

// Fail makes every subsequent call return err (nil restores the store).
func (s *MemoryStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Put stores rec without going through Save; it does not count as a write.
func (s *MemoryStore) Put(rec record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[rec.ID] = rec.CloneFor(rec.Region)
}

// Saves returns the number of successful Save calls.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, unavailable(s.label, "list", s.err)
	}
	out := make([]record.Record, 0, len(s.rows))
	for _, rec := range s.rows {
		out = append(out, rec.CloneFor(rec.Region))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemoryStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return false, unavailable(s.label, "exists", s.err)
	}
	_, ok := s.rows[id]
	return ok, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return record.Record{}, unavailable(s.label, "save", s.err)
	}
	s.rows[rec.ID] = rec.CloneFor(rec.Region)
	s.saves++
	return rec, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return record.Record{}, unavailable(s.label, "find", s.err)
	}
	rec, ok := s.rows[id]
	if !ok {
		return record.Record{}, ErrRecordNotFound
	}
	return rec.CloneFor(rec.Region), nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return unavailable(s.label, "delete", s.err)
	}
	delete(s.rows, id)
	return nil
}
