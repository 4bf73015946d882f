// Package repository implements the service repositories on PostgreSQL through pgx.
package repository

import (
	"context"

	"guildkeeper/database"
	"guildkeeper/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both the pool and a transaction
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a service.Store backed by PostgreSQL
type Store struct {
	db *database.DB
}

// NewStore creates a PostgreSQL store over an open connection pool
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Accounts() service.AccountRepository { return NewAccountRepository(s.db) }
func (s *Store) Quarantines() service.QuarantineRepository { return NewQuarantineRepository(s.db) }
func (s *Store) Mutes() service.MuteRepository { return NewMuteRepository(s.db) }
func (s *Store) Warnings() service.WarningRepository { return NewWarningRepository(s.db) }
func (s *Store) AFK() service.AFKRepository { return NewAFKRepository(s.db) }
func (s *Store) Shop() service.ShopRepository { return NewShopRepository(s.db) }
func (s *Store) Salaries() service.SalaryRepository { return NewSalaryRepository(s.db) }
func (s *Store) TriviaScores() service.TriviaScoreRepository { return NewTriviaScoreRepository(s.db) }
func (s *Store) TaskRuns() service.TaskRunRepository { return NewTaskRunRepository(s.db) }

// Close closes the connection pool
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
