// Package postgres implements the Entity Store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lms_backoffice/internal/repository"
	"github.com/Freeeeeet/lms_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store binds all repositories to either the pool or an open transaction.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	parents       *ParentRepository
	students      *StudentRepository
	classes       *ClassRepository
	registrations *RegistrationRepository
	subscriptions *SubscriptionRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore создаёт хранилище поверх пула соединений
func NewStore(pool *pgxpool.Pool) *Store {
	return newStore(pool, nil, pool)
}

func newStore(pool *pgxpool.Pool, tx pgx.Tx, q base.Querier) *Store {
	return &Store{
		pool:          pool,
		tx:            tx,
		parents:       NewParentRepository(q),
		students:      NewStudentRepository(q),
		classes:       NewClassRepository(q),
		registrations: NewRegistrationRepository(q),
		subscriptions: NewSubscriptionRepository(q),
	}
}

// Connect открывает пул и проверяет соединение
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func (s *Store) Parents() repository.ParentRepository             { return s.parents }
func (s *Store) Students() repository.StudentRepository           { return s.students }
func (s *Store) Classes() repository.ClassRepository              { return s.classes }
func (s *Store) Registrations() repository.RegistrationRepository { return s.registrations }
func (s *Store) Subscriptions() repository.SubscriptionRepository { return s.subscriptions }

// WithinTx runs fn in a read-committed transaction. Callers serialize competing writers
// with GetForUpdate row locks. A Store that is already inside a transaction joins it.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newStore(s.pool, tx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Close закрывает пул. Транзакционная копия пул не закрывает.
func (s *Store) Close() {
	if s.tx == nil && s.pool != nil {
		s.pool.Close()
	}
}
