package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/namidia/namidia/internal/config"
)

//go:embed schema.sql
var schema string

// DB holds database connections
type DB struct {
	Postgres *sqlx.DB
	Redis    *redis.Client
}

// NewDB creates new database connections using config
func NewDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DB, error) {
	// Connect to PostgreSQL
	postgres, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Configure connection pool
	postgres.SetMaxOpenConns(cfg.Database.MaxConns)
	postgres.SetMaxIdleConns(cfg.Database.MinConns)
	postgres.SetConnMaxLifetime(time.Hour)

	if err := postgres.PingContext(ctx); err != nil {
		postgres.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL", zap.String("db", cfg.Database.Name))

	if cfg.Database.Migrate {
		if err := Migrate(ctx, postgres); err != nil {
			postgres.Close()
			return nil, err
		}
		logger.Info("database schema is up to date")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		postgres.Close()
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.GetRedisAddr()))

	return &DB{
		Postgres: postgres,
		Redis:    rdb,
	}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Ping checks both backends
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Postgres.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unavailable: %w", err)
	}
	if err := db.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unavailable: %w", err)
	}
	return nil
}

// Close closes all database connections
func (db *DB) Close() error {
	if err := db.Postgres.Close(); err != nil {
		return fmt.Errorf("failed to close PostgreSQL: %w", err)
	}
	if err := db.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close Redis: %w", err)
	}

	return nil
}
