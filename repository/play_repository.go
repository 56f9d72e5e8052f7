package repository

import (
	"context"
	"fmt"

	"motionfm/model"

	"gorm.io/gorm"
)

// PlayRepository stores the play history in a SQL database.
type PlayRepository struct {
	db *gorm.DB
}

// NewPlayRepository wraps an open GORM connection.
func NewPlayRepository(db *gorm.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Migrate creates or updates the plays table.
func (r *PlayRepository) Migrate() error {
	if err := r.db.AutoMigrate(&model.Play{}); err != nil {
		return fmt.Errorf("failed to auto migrate plays: %w", err)
	}
	return nil
}

// RecordPlay inserts one finished play.
func (r *PlayRepository) RecordPlay(ctx context.Context, play *model.Play) error {
	if err := r.db.WithContext(ctx).Create(play).Error; err != nil {
		return fmt.Errorf("failed to insert play %s: %w", play.ID, err)
	}
	return nil
}

// Recent returns the latest plays, newest first.
func (r *PlayRepository) Recent(ctx context.Context, limit int) ([]model.Play, error) {
	var plays []model.Play
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&plays).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	return plays, nil
}

// CountByPath returns how often a track was played.
func (r *PlayRepository) CountByPath(ctx context.Context, path string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Play{}).
		Where("path = ?", path).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count plays of %s: %w", path, err)
	}
	return n, nil
}
