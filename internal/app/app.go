// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/placement-backend/internal/config"
	"github.com/javajoker/placement-backend/internal/database"
	"github.com/javajoker/placement-backend/internal/store"
	"github.com/javajoker/placement-backend/internal/store/badgerstore"
	"github.com/javajoker/placement-backend/internal/store/gormstore"
)

// SetupLogging configures the standard logrus logger.
func SetupLogging(cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// OpenStore opens the configured Record Store. With migrate set, the
// Postgres schema and its exclusion indexes are brought up to date first.
func OpenStore(cfg *config.Config, migrate bool) (store.Store, error) {
	switch cfg.Store.Driver {
	case "badger":
		st, err := badgerstore.Open(badgerstore.Config{
			Dir:              cfg.Store.BadgerDir,
			InMemory:         cfg.Store.BadgerInMemory,
			ExclusiveFaculty: cfg.Engine.ExclusiveFacultyAllocation,
			MaxAttempts:      cfg.Store.RetryAttempts,
		})
		if err != nil {
			return nil, err
		}
		logrus.WithField("dir", cfg.Store.BadgerDir).Info("Using embedded record store")
		return st, nil

	case "postgres":
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.RunMigrations(db, cfg.Engine.ExclusiveFacultyAllocation); err != nil {
				database.Close(db)
				return nil, err
			}
		}
		return gormstore.New(db), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// NewRedisClient returns nil when no address is configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
