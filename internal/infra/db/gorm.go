package db

import (
	"fmt"

	"rushivan/internal/config"
	"rushivan/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.DatabaseConfig, l gormlogger.Interface) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: l})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return gdb, nil
}

// FKの参照先から順に作る
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Customer{},
		&model.Product{},
		&model.Attribute{},
		&model.AttributeTerm{},
		&model.ProductVariation{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
