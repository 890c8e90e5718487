package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foxseedlab/kaigolog/internal/activity"
	internalstorage "github.com/foxseedlab/kaigolog/internal/storage"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slotRow holds one persisted JSON slot.
type slotRow struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (slotRow) TableName() string {
	return "slots"
}

type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := db.AutoMigrate(&slotRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewMemoryStore opens an in-memory store, used by tests.
func NewMemoryStore() (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&slotRow{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]activity.Interval, error) {
	blob, err := s.loadSlot(ctx, internalstorage.SlotHistory)
	if err != nil {
		return nil, err
	}
	return internalstorage.DecodeHistory(blob), nil
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, history []activity.Interval) error {
	blob, err := internalstorage.EncodeHistory(history)
	if err != nil {
		return err
	}
	return s.saveSlot(ctx, internalstorage.SlotHistory, blob)
}

func (s *SQLiteStore) LoadCurrent(ctx context.Context) (*activity.Interval, error) {
	blob, err := s.loadSlot(ctx, internalstorage.SlotCurrent)
	if err != nil {
		return nil, err
	}
	return internalstorage.DecodeCurrent(blob), nil
}

func (s *SQLiteStore) SaveCurrent(ctx context.Context, current *activity.Interval) error {
	blob, err := internalstorage.EncodeCurrent(current)
	if err != nil {
		return err
	}
	return s.saveSlot(ctx, internalstorage.SlotCurrent, blob)
}

func (s *SQLiteStore) LoadRoster(ctx context.Context) ([]string, error) {
	blob, err := s.loadSlot(ctx, internalstorage.SlotRoster)
	if err != nil {
		return nil, err
	}
	return internalstorage.DecodeNames(blob), nil
}

func (s *SQLiteStore) SaveRoster(ctx context.Context, roster []string) error {
	blob, err := internalstorage.EncodeNames(roster)
	if err != nil {
		return err
	}
	return s.saveSlot(ctx, internalstorage.SlotRoster, blob)
}

func (s *SQLiteStore) LoadRecents(ctx context.Context) ([]string, error) {
	blob, err := s.loadSlot(ctx, internalstorage.SlotRecents)
	if err != nil {
		return nil, err
	}
	return internalstorage.DecodeNames(blob), nil
}

func (s *SQLiteStore) SaveRecents(ctx context.Context, recents []string) error {
	blob, err := internalstorage.EncodeNames(recents)
	if err != nil {
		return err
	}
	return s.saveSlot(ctx, internalstorage.SlotRecents, blob)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("DELETE FROM slots").Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) loadSlot(ctx context.Context, key string) ([]byte, error) {
	var row slotRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.Value, nil
}

func (s *SQLiteStore) saveSlot(ctx context.Context, key string, blob []byte) error {
	return s.db.WithContext(ctx).Save(&slotRow{Key: key, Value: blob}).Error
}
