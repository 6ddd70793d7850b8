package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store hands out one connection-bound Session per workflow invocation.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session is a single acquired connection. Every repository it returns runs on that
// connection. Release must be called on every exit path and is safe to call twice.
type Session interface {
	Users() UserRepository
	Codes() VerificationCodeRepository
	Projects() ProjectRepository
	// WithTx runs fn in a transaction on the session's connection, committing when fn
	// returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Session) error) error
	Release()
}

type txBeginner interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore acquires sessions from a pgx pool.
type PostgresStore struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// NewPostgresStore wraps pool. A positive acquireTimeout bounds each Acquire.
func NewPostgresStore(pool *pgxpool.Pool, acquireTimeout time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, acquireTimeout: acquireTimeout}
}

// Acquire checks out a connection from the pool.
func (s *PostgresStore) Acquire(ctx context.Context) (Session, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("acquire connection: postgres pool not configured")
	}
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &pgSession{db: conn, release: conn.Release}, nil
}

type pgSession struct {
	db      txBeginner
	release func()
	once    sync.Once
}

func (s *pgSession) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *pgSession) Codes() VerificationCodeRepository {
	return NewVerificationCodeRepository(s.db)
}

func (s *pgSession) Projects() ProjectRepository {
	return NewProjectRepository(s.db)
}

func (s *pgSession) WithTx(ctx context.Context, fn func(ctx context.Context, tx Session) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("commit transaction: %w", translate(commitErr))
		}
	}()

	// The transaction lives on the outer connection, so releasing it here is a no-op.
	err = fn(ctx, &pgSession{db: tx, release: func() {}})
	return err
}

func (s *pgSession) Release() {
	s.once.Do(s.release)
}
