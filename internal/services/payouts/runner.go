package payouts

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"restoledger/internal/store/repositories"
)

// BatchJob is one scheduled batch run.
type BatchJob struct {
	Currency  string
	AsOf      time.Time
	MinAmount int64
}

// Runner owns background batch runs: the ingress adapter enqueues and
// returns 202 while the runner opens its own transaction per job. Failures
// roll back and are logged, never surfaced to the originating request.
// At-most-once delivery is fine because the (restaurant, currency, as_of)
// uniqueness guard makes re-invocation safe.
type Runner struct {
	store repositories.Store
	jobs  chan BatchJob
}

func NewRunner(store repositories.Store, queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Runner{store: store, jobs: make(chan BatchJob, queueSize)}
}

// Enqueue schedules a batch run. Returns false when the queue is full.
func (r *Runner) Enqueue(job BatchJob) bool {
	select {
	case r.jobs <- job:
		return true
	default:
		log.Warn().Str("currency", job.Currency).Time("as_of", job.AsOf).Msg("payout job queue full, dropping run")
		return false
	}
}

// Run consumes jobs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	log.Info().Msg("payout runner: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("payout runner: stopping")
			return
		case job := <-r.jobs:
			r.process(ctx, job)
		}
	}
}

func (r *Runner) process(ctx context.Context, job BatchJob) {
	log.Info().
		Str("currency", job.Currency).
		Time("as_of", job.AsOf).
		Int64("min_amount", job.MinAmount).
		Msg("payout batch started")

	start := time.Now()
	var created int
	err := r.store.WithTx(ctx, func(repos repositories.RepoSet) error {
		var err error
		created, err = NewGenerator(repos).RunBatch(ctx, job.Currency, job.AsOf, job.MinAmount)
		return err
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("currency", job.Currency).
			Time("as_of", job.AsOf).
			Dur("duration", time.Since(start)).
			Msg("payout batch failed")
		return
	}

	log.Info().
		Str("currency", job.Currency).
		Time("as_of", job.AsOf).
		Int("payouts_created", created).
		Dur("duration", time.Since(start)).
		Msg("payout batch completed")
}
