package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

const (
	defaultLogPageSize = 20
	maxLogPageSize     = 100
)

// LogStore is the append-only activity log.
type LogStore struct {
	db *gorm.DB
}

// Page describes one page of a listing.
type Page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Append persists one entry.
func (s *LogStore) Append(ctx context.Context, entry *models.LogEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// List returns entries newest first. Non-positive page or limit fall back
// to the first page of 20. Pages far beyond the end are clamped.
func (s *LogStore) List(ctx context.Context, page, limit int) ([]models.LogEntry, Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLogPageSize
	}
	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.LogEntry{}).Count(&total).Error; err != nil {
		return nil, Page{}, fmt.Errorf("count log entries: %w", err)
	}
	// Clamp so (page-1)*limit cannot overflow.
	if last := total/int64(limit) + 1; int64(page) > last {
		page = int(last)
	}

	var entries []models.LogEntry
	err := s.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, Page{}, fmt.Errorf("list log entries: %w", err)
	}

	return entries, Page{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}
