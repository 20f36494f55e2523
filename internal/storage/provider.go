// Package storage selects and instruments the durable record store.
package storage

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/config"
	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/storage/memory"
	"github.com/JakeFAU/trendwatch/internal/storage/mongo"
	"github.com/JakeFAU/trendwatch/internal/storage/postgres"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

// New builds the record store named by cfg.Driver.
func New(cfg config.StoreConfig, logger *zap.Logger) (trends.RecordStore, error) {
	logger = logging.Named(logger, "store")
	timeout := time.Duration(cfg.WriteTimeoutSeconds) * time.Second

	var (
		store trends.RecordStore
		err   error
	)
	switch cfg.Driver {
	case config.StoreDriverMongo:
		store, err = mongo.NewRecordStore(mongo.Config{
			URI:          cfg.URI,
			Database:     cfg.Database,
			Collection:   cfg.Collection,
			WriteTimeout: timeout,
			Logger:       logger,
		})
	case config.StoreDriverPostgres:
		store, err = postgres.NewRecordStore(postgres.Config{
			DSN:          cfg.URI,
			Table:        cfg.Table,
			WriteTimeout: timeout,
			Logger:       logger,
		})
	case config.StoreDriverMemory:
		store = memory.NewRecordStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s store: %w", cfg.Driver, err)
	}
	logger.Info("record store configured", zap.String("driver", cfg.Driver))
	return NewObserved(cfg.Driver, store), nil
}
