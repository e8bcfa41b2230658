package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore keeps snapshots in the leaderboard_snapshots table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	if db == nil {
		panic("store: gorm db is required")
	}
	return &GormStore{db: db}
}

// Open connects to MySQL with dsn, configures the pool and migrates the
// snapshot table.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := NewGormStore(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}

	log.Info().Str("component", "snapshot-store").Msg("Snapshot database initialized")
	return s, nil
}

// Migrate creates or updates the snapshot table.
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&Snapshot{}); err != nil {
		return fmt.Errorf("migrate leaderboard_snapshots: %w", err)
	}
	return nil
}

// Save inserts the snapshot and sets its ID.
func (s *GormStore) Save(ctx context.Context, snapshot *Snapshot) error {
	if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("save snapshot for group %d: %w", snapshot.GroupID, err)
	}
	return nil
}

// Latest returns the most recent snapshot of the group.
func (s *GormStore) Latest(ctx context.Context, groupID roblox.GroupID) (*Snapshot, error) {
	var snapshot Snapshot
	err := s.db.WithContext(ctx).
		Where("group_id = ?", int64(groupID)).
		Order("created_at DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load latest snapshot for group %d: %w", groupID, err)
	}
	return &snapshot, nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
