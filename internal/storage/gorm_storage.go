package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStorage keeps the tariff table in SQLite or PostgreSQL.
type GormStorage struct {
	db *gorm.DB
}

func NewGormStorage(driver, dsn string) (*GormStorage, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return &GormStorage{db: db}, nil
}

// Migrate creates the tariffs table when it does not exist yet.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Tariff{})
}

func (s *GormStorage) ListTariffs(ctx context.Context) ([]Tariff, error) {
	var list []Tariff
	result := s.db.WithContext(ctx).Order("position asc, id asc").Find(&list)
	return list, result.Error
}

func (s *GormStorage) ReplaceTariffs(ctx context.Context, list []Tariff) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Tariff{}).Error; err != nil {
			return fmt.Errorf("clear tariffs: %w", err)
		}
		if len(list) == 0 {
			return nil
		}
		rows := make([]Tariff, len(list))
		copy(rows, list)
		for i := range rows {
			rows[i].ID = 0
			rows[i].UpdatedAt = now
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("insert tariffs: %w", err)
		}
		return nil
	})
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
