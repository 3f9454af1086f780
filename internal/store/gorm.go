package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type gormSink struct {
	db *gorm.DB
}

func (s *gormSink) Insert(ctx context.Context, rec Record) (Record, error) {
	rec.ID = 0
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return Record{}, fmt.Errorf("insert transcript: %w", err)
	}
	return rec, nil
}

func (s *gormSink) ListAll(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := s.db.WithContext(ctx).Order("id asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	return recs, nil
}

func (s *gormSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
