// Package mongo provides a MongoDB-backed record store.
package mongo

import (
	"context"
	"fmt"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Config identifies the deployment, database and collection.
type Config struct {
	URI          string
	Database     string
	Collection   string
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

type inserter interface {
	InsertOne(ctx context.Context, document any) error
}

type session interface {
	collection(database, name string) inserter
	Disconnect(ctx context.Context) error
}

type connectFunc func(ctx context.Context, uri string) (session, error)

// RecordStore inserts one document per fetch, connecting per write.
type RecordStore struct {
	cfg     Config
	connect connectFunc
	logger  *zap.Logger
}

// NewRecordStore validates cfg; no connection is opened until Persist.
func NewRecordStore(cfg Config) (*RecordStore, error) {
	return newRecordStore(cfg, dial)
}

func newRecordStore(cfg Config, connect connectFunc) (*RecordStore, error) {
	if cfg.URI == "" || cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("mongo uri, database and collection are required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &RecordStore{cfg: cfg, connect: connect, logger: logging.Named(cfg.Logger, "mongo")}, nil
}

// Persist inserts the record document keyed by its ID.
func (s *RecordStore) Persist(ctx context.Context, record trends.FetchRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	client, err := s.connect(ctx, s.cfg.URI)
	if err != nil {
		return fmt.Errorf("%w: connect mongo: %w", trends.ErrNetworkResolution, err)
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			s.logger.Debug("disconnect failed", zap.String("record_id", record.ID), zap.Error(err))
		}
	}()

	if err := client.collection(s.cfg.Database, s.cfg.Collection).InsertOne(ctx, record.Document()); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

type driverSession struct {
	client *mongodriver.Client
}

func dial(ctx context.Context, uri string) (session, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second)
	client, err := mongodriver.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return driverSession{client: client}, nil
}

func (d driverSession) collection(database, name string) inserter {
	return driverCollection{coll: d.client.Database(database).Collection(name)}
}

func (d driverSession) Disconnect(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

type driverCollection struct {
	coll *mongodriver.Collection
}

func (c driverCollection) InsertOne(ctx context.Context, document any) error {
	if _, err := c.coll.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}
