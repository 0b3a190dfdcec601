package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"restoledger/internal/store/repositories"
)

// dbtx is the slice of pgx shared by *pgxpool.Pool and pgx.Tx, letting one
// repository implementation serve both autocommit and transactional callers.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoSet struct {
	restaurants *RestaurantRepo
	events      *EventRepo
	ledger      *LedgerRepo
	payouts     *PayoutRepo
}

func newRepoSet(db dbtx) repoSet {
	return repoSet{
		restaurants: &RestaurantRepo{db: db},
		events:      &EventRepo{db: db},
		ledger:      &LedgerRepo{db: db},
		payouts:     &PayoutRepo{db: db},
	}
}

func (r repoSet) Restaurants() repositories.RestaurantRepository { return r.restaurants }
func (r repoSet) Events() repositories.EventRepository           { return r.events }
func (r repoSet) Ledger() repositories.LedgerRepository          { return r.ledger }
func (r repoSet) Payouts() repositories.PayoutRepository         { return r.payouts }

// Store implements repositories.Store over a pgx pool.
type Store struct {
	repoSet
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{repoSet: newRepoSet(pool), pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(repositories.RepoSet) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(newRepoSet(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
