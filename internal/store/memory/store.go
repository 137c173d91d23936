// Package memory is an in-process store.RecordStore. Data is lost on exit;
// it backs development runs and service tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/store"
)

type Store struct {
	mu      sync.RWMutex
	records map[int64]domain.Record
	seq     int64
}

var _ store.RecordStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{records: make(map[int64]domain.Record)}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Create(_ context.Context, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	rec.ID = s.seq
	s.records[rec.ID] = *rec
	return nil
}

func (s *Store) CreateMany(_ context.Context, recs []*domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.seq++
		rec.ID = s.seq
		s.records[rec.ID] = *rec
	}
	return nil
}

func (s *Store) Update(_ context.Context, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; !ok {
		return store.ErrNotFound
	}
	s.records[rec.ID] = *rec
	return nil
}

func (s *Store) FindByID(_ context.Context, id int64) (domain.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	return rec, ok, nil
}

func (s *Store) FindByStatus(_ context.Context, status domain.Status) ([]domain.Record, error) {
	s.mu.RLock()
	out := make([]domain.Record, 0)
	for _, rec := range s.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Record) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return compareID(b.ID, a.ID)
	})
	return out, nil
}

func (s *Store) FindAll(context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	out := make([]domain.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Record) int { return compareID(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CountByStatus(_ context.Context, status domain.Status) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.records {
		if rec.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *Store) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.records)
	return nil
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
