// Package service holds the reading log use cases. It owns timestamps,
// defaults and validation; stores only persist what it hands them.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/csvcodec"
	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/store"
)

var (
	// ErrInvalidRecord wraps every validation failure on Save and SaveAll.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrNoValidRecords means an import file produced no importable row.
	ErrNoValidRecords = errors.New("no valid records to import")
	// ErrInvalidPayload means a commit payload could not be decoded.
	ErrInvalidPayload = errors.New("invalid import payload")
)

// RecordService is the entry point for every record operation.
type RecordService struct {
	store   store.RecordStore
	decoder *csvcodec.Decoder
	logger  logger.Logger
	now     func() time.Time
}

// Option customises a RecordService.
type Option func(*RecordService)

// WithClock replaces time.Now. Tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *RecordService) { s.now = now }
}

func NewRecordService(st store.RecordStore, log logger.Logger, opts ...Option) *RecordService {
	s := &RecordService{
		store:   st,
		decoder: csvcodec.NewDecoder(log),
		logger:  log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListByStatus returns records with status, most recently updated first.
func (s *RecordService) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Record, error) {
	return s.store.FindByStatus(ctx, status)
}

func (s *RecordService) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	return s.store.CountByStatus(ctx, status)
}

// Counts returns the number of records for every status.
func (s *RecordService) Counts(ctx context.Context) (map[domain.Status]int64, error) {
	counts := make(map[domain.Status]int64, len(domain.Statuses()))
	for _, st := range domain.Statuses() {
		n, err := s.store.CountByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, nil
}

// Get loads a record. found is false when the ID does not exist.
func (s *RecordService) Get(ctx context.Context, id int64) (rec domain.Record, found bool, err error) {
	return s.store.FindByID(ctx, id)
}

// Save creates rec when its ID is zero and updates it otherwise.
// On update the creation time is always taken from the stored copy.
func (s *RecordService) Save(ctx context.Context, rec domain.Record) (domain.Record, error) {
	if err := normalize(&rec); err != nil {
		return domain.Record{}, err
	}
	now := s.now()

	if rec.IsNew() {
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if err := s.store.Create(ctx, &rec); err != nil {
			return domain.Record{}, err
		}
		s.logger.Info("record created", logger.Int64("id", rec.ID), logger.String("status", rec.Status.String()))
		return rec, nil
	}

	existing, found, err := s.store.FindByID(ctx, rec.ID)
	if err != nil {
		return domain.Record{}, err
	}
	if !found {
		return domain.Record{}, store.ErrNotFound
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = now
	if err := s.store.Update(ctx, &rec); err != nil {
		return domain.Record{}, err
	}
	s.logger.Info("record updated", logger.Int64("id", rec.ID), logger.String("status", rec.Status.String()))
	return rec, nil
}

// SaveAll validates every record, then creates them in one store call
// with a shared timestamp. Nothing is written if any record is invalid.
func (s *RecordService) SaveAll(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	if len(records) == 0 {
		return []domain.Record{}, nil
	}

	now := s.now()
	out := make([]domain.Record, len(records))
	ptrs := make([]*domain.Record, len(records))
	for i, rec := range records {
		if err := normalize(&rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		rec.ID = 0
		rec.CreatedAt = now
		rec.UpdatedAt = now
		out[i] = rec
		ptrs[i] = &out[i]
	}

	if err := s.store.CreateMany(ctx, ptrs); err != nil {
		return nil, err
	}
	s.logger.Info("records created", logger.Int("count", len(out)))
	return out, nil
}

func (s *RecordService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", logger.Int64("id", id))
	return nil
}

func (s *RecordService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Warn("all records deleted")
	return nil
}

// normalize applies defaults and rejects values the model does not allow.
func normalize(rec *domain.Record) error {
	if !rec.HasTitle() {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if rec.Status == "" {
		rec.Status = domain.DefaultStatus
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRecord, rec.Status)
	}
	if rec.CurrentPage < 0 {
		return fmt.Errorf("%w: current page must not be negative", ErrInvalidRecord)
	}
	if rec.TotalPages != nil && *rec.TotalPages <= 0 {
		return fmt.Errorf("%w: total pages must be positive", ErrInvalidRecord)
	}
	return nil
}
