// Package postgres provides a Postgres-backed record store.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the connection and target table.
type Config struct {
	DSN          string
	Table        string
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close(context.Context) error
}

type connectFunc func(ctx context.Context, dsn string) (execCloser, error)

// RecordStore writes one row per fetch record, opening a connection per write.
//
// Expected schema:
//
//	CREATE TABLE trend_records (
//		id              TEXT PRIMARY KEY,
//		trending_topics TEXT[] NOT NULL,
//		timestamp       TEXT NOT NULL,
//		ip_address      TEXT NOT NULL
//	);
type RecordStore struct {
	dsn     string
	table   string
	timeout time.Duration
	connect connectFunc
	logger  *zap.Logger
}

// NewRecordStore validates cfg; no connection is opened until Persist.
func NewRecordStore(cfg Config) (*RecordStore, error) {
	return newRecordStore(cfg, func(ctx context.Context, dsn string) (execCloser, error) {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped by Persist
		}
		return conn, nil
	})
}

func newRecordStore(cfg Config, connect connectFunc) (*RecordStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.uri is required")
	}
	if _, err := pgx.ParseConfig(cfg.DSN); err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	table := cfg.Table
	if table == "" {
		table = "trend_records"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RecordStore{
		dsn:     cfg.DSN,
		table:   table,
		timeout: timeout,
		connect: connect,
		logger:  logging.Named(cfg.Logger, "postgres"),
	}, nil
}

// Persist inserts the record as a new row keyed by its ID.
func (s *RecordStore) Persist(ctx context.Context, record trends.FetchRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.connect(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("%w: connect postgres: %w", trends.ErrNetworkResolution, err)
	}
	defer func() {
		if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
			s.logger.Debug("close connection failed", zap.String("record_id", record.ID), zap.Error(err))
		}
	}()

	doc := record.Document()
	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	trending_topics,
	timestamp,
	ip_address
) VALUES (
	$1,$2,$3,$4
)`, s.table)
	if _, err := conn.Exec(ctx, query, doc.ID, doc.Topics, doc.Timestamp, doc.Address); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}
