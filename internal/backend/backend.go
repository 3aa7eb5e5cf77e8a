// Package backend opens the store selected at startup and hands back the
// catalog Models together with a way to release the connection.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.

	"github.com/aoideee/locallibrary/internal/data"
	"github.com/aoideee/locallibrary/internal/memstore"
	"github.com/aoideee/locallibrary/internal/mongostore"
)

// Supported store kinds.
const (
	Mongo    = "mongo"
	Postgres = "postgres"
	Memory   = "memory"
)

// Kinds lists every accepted value for Config.Kind.
var Kinds = []string{Mongo, Postgres, Memory}

// Config selects and configures a store.
type Config struct {
	Kind string

	// PostgreSQL
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration

	// MongoDB
	MongoURI      string
	MongoDatabase string
}

// Store is an open backend.
type Store struct {
	Kind   string
	Models data.Models

	close func(context.Context) error
}

// Close releases the underlying connection pool, if any.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the store named by cfg.Kind and prepares it for use:
// indexes for MongoDB, the schema for PostgreSQL.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Kind {
	case Mongo:
		return openMongo(ctx, cfg)
	case Postgres:
		return openPostgres(ctx, cfg)
	case Memory:
		return &Store{Kind: Memory, Models: memstore.NewModels()}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Kind)
	}
}

func openMongo(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongostore.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &Store{
		Kind:   Mongo,
		Models: mongostore.NewModels(db),
		close:  client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg Config) (*Store, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := data.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{
		Kind:   Postgres,
		Models: data.NewModels(db),
		close:  func(context.Context) error { return db.Close() },
	}, nil
}

// OpenDB opens a PostgreSQL connection pool and pings it. sql.Open only
// validates the DSN, so the ping is what proves the database is reachable.
func OpenDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.MaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
