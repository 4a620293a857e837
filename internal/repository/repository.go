package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool は PostgreSQL 接続プールを生成する
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Stores bundles the repositories of one backing database.
type Stores struct {
	Backend     string // "postgres", "mongo" or "memory"
	DB          DB
	Submissions SubmissionRepository
	Courses     CourseRepository
	Users       UserRepository
	close       func(ctx context.Context) error
}

// Close releases the underlying connection pool or client.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// IsMongoURL reports whether dbURL selects the MongoDB backend.
func IsMongoURL(dbURL string) bool {
	return strings.HasPrefix(dbURL, "mongodb://") || strings.HasPrefix(dbURL, "mongodb+srv://")
}

// Open connects to the database named by dbURL. mongodb:// and mongodb+srv://
// URLs use MongoDB (dbName selects the database), memory:// keeps everything
// in process, and anything else is handed to pgx.
func Open(ctx context.Context, dbURL, dbName string) (*Stores, error) {
	if IsMemoryURL(dbURL) {
		return NewMemoryStores(), nil
	}
	if IsMongoURL(dbURL) {
		client, err := NewMongoClient(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		db := client.Database(dbName)
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return &Stores{
			Backend:     "mongo",
			DB:          &mongoPinger{client: client},
			Submissions: NewMongoSubmissionRepository(db),
			Courses:     NewMongoCourseRepository(db),
			Users:       NewMongoUserRepository(db),
			close:       client.Disconnect,
		}, nil
	}

	pool, err := NewPool(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Stores{
		Backend:     "postgres",
		DB:          pool,
		Submissions: NewPgSubmissionRepository(pool),
		Courses:     NewPgCourseRepository(pool),
		Users:       NewPgUserRepository(pool),
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}
