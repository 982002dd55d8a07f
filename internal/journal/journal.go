package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultLimit = 20

// Service stores the CLI operation history in a local sqlite database.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the journal at path and migrates its schema.
func Open(path string, logger *zap.Logger) (*Service, error) {
	if path == "" {
		return nil, errors.New("journal path must not be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return &Service{db: db, logger: logger}, nil
}

func (s *Service) GetDB() *gorm.DB {
	return s.db
}

// Close closes the database connection
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record appends entry to the journal.
func (s *Service) Record(entry *Entry) error {
	if err := s.db.Create(entry).Error; err != nil {
		s.logger.Warn("failed to write journal entry",
			zap.String("resource", entry.Resource),
			zap.String("operation", entry.Operation),
			zap.Error(err))
		return err
	}
	return nil
}

// Recent returns the newest entries first.
func (s *Service) Recent(q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	tx := s.db.Model(&Entry{}).Order("id desc").Limit(limit)
	if q.Resource != "" {
		tx = tx.Where("resource = ?", q.Resource)
	}
	if q.FailedOnly {
		tx = tx.Where("status = ?", StatusFailed)
	}
	var entries []Entry
	err := tx.Find(&entries).Error
	return entries, err
}

// Get returns the entry with the given id.
func (s *Service) Get(id uint) (*Entry, error) {
	var entry Entry
	if err := s.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Prune removes all but the newest keep entries and returns how many were deleted.
func (s *Service) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	var ids []uint
	if keep > 0 {
		if err := s.db.Model(&Entry{}).Order("id desc").Limit(keep).Pluck("id", &ids).Error; err != nil {
			return 0, err
		}
	}
	tx := s.db.Unscoped().Where("1 = 1")
	if len(ids) > 0 {
		tx = tx.Where("id NOT IN ?", ids)
	}
	result := tx.Delete(&Entry{})
	return result.RowsAffected, result.Error
}
