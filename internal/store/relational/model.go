package relational

import (
	"database/sql"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/domain"
)

// RecordModel is the row layout of reading_records.
// Timestamps are written by the service, so gorm's auto-tracking is off.
type RecordModel struct {
	ID          int64         `gorm:"primaryKey;autoIncrement"`
	Title       string        `gorm:"not null"`
	Author      string        `gorm:"not null;default:''"`
	Status      string        `gorm:"column:reading_status;not null;index:idx_reading_records_status_updated,priority:1"`
	CurrentPage int           `gorm:"not null;default:0"`
	TotalPages  sql.NullInt64 `gorm:"column:total_pages;type:bigint"`
	Summary     string        `gorm:"type:text;not null;default:''"`
	Thoughts    string        `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time     `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time     `gorm:"not null;autoUpdateTime:false;index:idx_reading_records_status_updated,priority:2"`
}

func (RecordModel) TableName() string { return "reading_records" }

func recordToModel(r *domain.Record) RecordModel {
	m := RecordModel{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		Status:      string(r.Status),
		CurrentPage: r.CurrentPage,
		Summary:     r.Summary,
		Thoughts:    r.Thoughts,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.TotalPages != nil {
		m.TotalPages = sql.NullInt64{Int64: int64(*r.TotalPages), Valid: true}
	}
	return m
}

func recordFromModel(m RecordModel) domain.Record {
	r := domain.Record{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Status:      domain.Status(m.Status),
		CurrentPage: m.CurrentPage,
		Summary:     m.Summary,
		Thoughts:    m.Thoughts,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.TotalPages.Valid {
		r.TotalPages = domain.IntPtr(int(m.TotalPages.Int64))
	}
	return r
}
