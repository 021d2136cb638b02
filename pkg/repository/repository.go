package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository is a thin generic gorm store for a single model type.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Save(ctx context.Context, record *T) error
	First(ctx context.Context, query any, args ...any) (*T, error)
	Find(ctx context.Context, query any, args ...any) ([]T, error)
	Count(ctx context.Context, query any, args ...any) (int64, error)
	Delete(ctx context.Context, query any, args ...any) error
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository bound to the given connection.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Save(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Save(record).Error
}

// First returns nil without error when no row matches.
func (s *store[T]) First(ctx context.Context, query any, args ...any) (*T, error) {
	var record T
	err := s.db.WithContext(ctx).Where(query, args...).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *store[T]) Find(ctx context.Context, query any, args ...any) ([]T, error) {
	var records []T
	if err := s.db.WithContext(ctx).Where(query, args...).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *store[T]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	var model T
	var count int64
	if err := s.db.WithContext(ctx).Model(&model).Where(query, args...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *store[T]) Delete(ctx context.Context, query any, args ...any) error {
	var model T
	return s.db.WithContext(ctx).Where(query, args...).Delete(&model).Error
}
