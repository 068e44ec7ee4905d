package model

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = gorm.ErrRecordNotFound

// HistoryDao defines the interface for database operations on the analysis_histories table.
type HistoryDao interface {
	Insert(ctx context.Context, data *AnalysisHistories) error
	FindRecent(ctx context.Context, limit int) ([]*AnalysisHistories, error)
	FindByAddress(ctx context.Context, address string) ([]*AnalysisHistories, error)
}

type historyDao struct {
	db *gorm.DB
}

// NewHistoryDao creates a new instance of HistoryDao.
func NewHistoryDao(db *gorm.DB) HistoryDao {
	return &historyDao{
		db: db,
	}
}

// Insert adds a new record to the analysis_histories table.
func (d *historyDao) Insert(ctx context.Context, data *AnalysisHistories) error {
	return d.db.WithContext(ctx).Create(data).Error
}

// FindRecent retrieves the most recent analysis records, newest first.
func (d *historyDao) FindRecent(ctx context.Context, limit int) ([]*AnalysisHistories, error) {
	var records []*AnalysisHistories
	err := d.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindByAddress retrieves all analysis records for a single address.
func (d *historyDao) FindByAddress(ctx context.Context, address string) ([]*AnalysisHistories, error) {
	var records []*AnalysisHistories
	err := d.db.WithContext(ctx).Where("address = ?", address).Order("created_at desc").Find(&records).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return records, nil
}
