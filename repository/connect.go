package repository

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"anonchat/config"
	"anonchat/models"
)

// connectTimeout bounds the initial reachability check against the
// durable backend.
const connectTimeout = 5 * time.Second

// Open selects the storage backend for the lifetime of the process. The
// durable Postgres backend is attempted first; on any failure, including
// an unset connection string, the server degrades to the in-memory store.
// The choice is one-way: there is no retry or promotion back to Postgres.
func Open(cfg *config.Config, logger *slog.Logger) Store {
	if cfg.DatabaseURL == "" {
		logger.Warn("no database URL configured, using in-memory storage (data will be lost on restart)")
		return NewMemoryStore()
	}

	db, err := connectPostgres(cfg)
	if err != nil {
		logger.Warn("database connection failed, using in-memory storage (data will be lost on restart)", "error", err)
		return NewMemoryStore()
	}

	logger.Info("connected to database", "database", cfg.DatabaseName)
	return NewPostgresStore(db)
}

func connectPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := db.AutoMigrate(&models.Room{}, &models.Message{}); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}
