package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/luxetrack-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrdersKey is the store key holding the full order snapshot
const OrdersKey = "luxetrack_orders"

// Store is the key-value persistence collaborator of the ledger
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value for key
	Set(ctx context.Context, key string, value []byte) error

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error
}

// GormStore implements Store on a single kv_entries table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db. The kv_entries table must be migrated.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get reads a value from the kv_entries table
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Set upserts a value into the kv_entries table
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Ping verifies the database connection
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
