package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// MustOpen builds the pool and verifies connectivity, retrying the ping with
// exponential backoff so the service survives a database that is still
// booting. Exits the process on a DSN parse error or retry exhaustion.
func MustOpen(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect fail")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		log.Warn().Err(err).Dur("retry_in", next).Msg("db ping failed, retrying")
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		log.Fatal().Err(err).Msg("db ping fail")
	}
	return pool
}
