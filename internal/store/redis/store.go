// Package redis stores reading records in Redis.
//
// Each record is a JSON string. Sorted sets index records by ID and,
// per status, by last update time. A record and its index entries are
// always written in one MULTI/EXEC transaction.
package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/store"
	"github.com/redis/go-redis/v9"
)

// Store is a store.RecordStore backed by Redis.
type Store struct {
	client *redis.Client
}

var _ store.RecordStore = (*Store)(nil)

// NewStore wraps an already connected client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Create assigns the next ID and saves the record.
func (s *Store) Create(ctx context.Context, rec *domain.Record) error {
	id, err := s.client.Incr(ctx, KeySequence).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate record id: %w", err)
	}
	rec.ID = id

	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return queueWrite(ctx, pipe, rec)
	}); err != nil {
		return fmt.Errorf("failed to save record %d: %w", id, err)
	}
	return nil
}

// CreateMany reserves a contiguous ID range and saves all records in one transaction.
func (s *Store) CreateMany(ctx context.Context, recs []*domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	last, err := s.client.IncrBy(ctx, KeySequence, int64(len(recs))).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate record ids: %w", err)
	}
	first := last - int64(len(recs)) + 1
	for i, rec := range recs {
		rec.ID = first + int64(i)
	}

	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range recs {
			if err := queueWrite(ctx, pipe, rec); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to save %d records: %w", len(recs), err)
	}
	return nil
}

// Update overwrites an existing record and moves it between status indexes.
// The record key is watched, so a concurrent delete aborts the write.
func (s *Store) Update(ctx context.Context, rec *domain.Record) error {
	key := RecordKey(rec.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		var old domain.Record
		if err := json.Unmarshal(data, &old); err != nil {
			return fmt.Errorf("failed to unmarshal record %d: %w", rec.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if old.Status != rec.Status {
				pipe.ZRem(ctx, StatusKey(old.Status), member(rec.ID))
			}
			return queueWrite(ctx, pipe, rec)
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return store.ErrNotFound
	case errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("record %d changed concurrently: %w", rec.ID, err)
	default:
		return fmt.Errorf("failed to update record %d: %w", rec.ID, err)
	}
}

func queueWrite(ctx context.Context, pipe redis.Pipeliner, rec *domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %d: %w", rec.ID, err)
	}

	m := member(rec.ID)
	pipe.Set(ctx, RecordKey(rec.ID), data, 0)
	pipe.ZAdd(ctx, KeyAllRecords, redis.Z{Score: float64(rec.ID), Member: m})
	pipe.ZAdd(ctx, StatusKey(rec.Status), redis.Z{Score: float64(rec.UpdatedAt.UnixMilli()), Member: m})
	return nil
}

// FindByID loads one record. A missing record is reported through the bool.
func (s *Store) FindByID(ctx context.Context, id int64) (domain.Record, bool, error) {
	data, err := s.client.Get(ctx, RecordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Record{}, false, nil
		}
		return domain.Record{}, false, fmt.Errorf("failed to get record %d: %w", id, err)
	}

	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Record{}, false, fmt.Errorf("failed to unmarshal record %d: %w", id, err)
	}
	return rec, true, nil
}

// FindByStatus returns records with status, most recently updated first.
// Records sharing a timestamp (one import batch) come newest ID first.
func (s *Store) FindByStatus(ctx context.Context, status domain.Status) ([]domain.Record, error) {
	ids, err := s.client.ZRevRange(ctx, StatusKey(status), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", status, err)
	}
	records, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	// members tie-break lexically ("9" > "10"), so order equal scores by ID
	slices.SortStableFunc(records, func(a, b domain.Record) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return records, nil
}

// FindAll returns every record in ID order.
func (s *Store) FindAll(ctx context.Context) ([]domain.Record, error) {
	ids, err := s.client.ZRange(ctx, KeyAllRecords, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return s.load(ctx, ids)
}

// load fetches records for ids in order, skipping ids whose value vanished.
func (s *Store) load(ctx context.Context, ids []string) ([]domain.Record, error) {
	if len(ids) == 0 {
		return []domain.Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = KeyPrefixRecord + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records := make([]domain.Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", ids[i], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// CountByStatus returns the size of one status index.
func (s *Store) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	n, err := s.client.ZCard(ctx, StatusKey(status)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", status, err)
	}
	return n, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, KeyAllRecords).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Delete removes a record and its index entries.
func (s *Store) Delete(ctx context.Context, id int64) error {
	m := member(id)
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, RecordKey(id))
		pipe.ZRem(ctx, KeyAllRecords, m)
		for _, st := range domain.Statuses() {
			pipe.ZRem(ctx, StatusKey(st), m)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every record. The ID sequence is left untouched.
func (s *Store) DeleteAll(ctx context.Context) error {
	ids, err := s.client.ZRange(ctx, KeyAllRecords, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	keys := make([]string, 0, len(ids)+1+len(domain.Statuses()))
	for _, id := range ids {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			continue
		}
		keys = append(keys, KeyPrefixRecord+id)
	}
	keys = append(keys, KeyAllRecords)
	for _, st := range domain.Statuses() {
		keys = append(keys, StatusKey(st))
	}

	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
