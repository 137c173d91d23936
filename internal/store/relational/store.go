// Package relational stores reading records in Postgres through gorm.
package relational

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is a store.RecordStore backed by a gorm connection.
type Store struct {
	db *gorm.DB
}

var _ store.RecordStore = (*Store)(nil)

// Open connects to dsn and creates the reading_records table if needed.
func Open(dsn string, log logger.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return New(db)
}

// New wraps an open connection and runs AutoMigrate for RecordModel.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Create(ctx context.Context, rec *domain.Record) error {
	model := recordToModel(rec)
	model.ID = 0
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	rec.ID = model.ID
	return nil
}

func (s *Store) CreateMany(ctx context.Context, recs []*domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	models := make([]RecordModel, len(recs))
	for i, rec := range recs {
		models[i] = recordToModel(rec)
		models[i].ID = 0
	}
	if err := s.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("insert %d records: %w", len(recs), err)
	}
	for i := range models {
		recs[i].ID = models[i].ID
	}
	return nil
}

func (s *Store) Update(ctx context.Context, rec *domain.Record) error {
	model := recordToModel(rec)
	res := s.db.WithContext(ctx).
		Model(&RecordModel{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"title":          model.Title,
			"author":         model.Author,
			"reading_status": model.Status,
			"current_page":   model.CurrentPage,
			"total_pages":    model.TotalPages,
			"summary":        model.Summary,
			"thoughts":       model.Thoughts,
			"created_at":     model.CreatedAt,
			"updated_at":     model.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update record %d: %w", rec.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (domain.Record, bool, error) {
	var model RecordModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Record{}, false, nil
		}
		return domain.Record{}, false, fmt.Errorf("get record %d: %w", id, err)
	}
	return recordFromModel(model), true, nil
}

func (s *Store) FindByStatus(ctx context.Context, status domain.Status) ([]domain.Record, error) {
	return s.list(ctx, "updated_at DESC, id DESC", "reading_status = ?", string(status))
}

func (s *Store) FindAll(ctx context.Context) ([]domain.Record, error) {
	return s.list(ctx, "id ASC")
}

func (s *Store) list(ctx context.Context, order string, conds ...any) ([]domain.Record, error) {
	var models []RecordModel
	tx := s.db.WithContext(ctx).Order(order)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	out := make([]domain.Record, 0, len(models))
	for _, m := range models {
		out = append(out, recordFromModel(m))
	}
	return out, nil
}

func (s *Store) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&RecordModel{}).Where("reading_status = ?", string(status)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s records: %w", status, err)
	}
	return n, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&RecordModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&RecordModel{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&RecordModel{}).Error
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}
