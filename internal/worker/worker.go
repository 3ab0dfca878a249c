package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"storefront/internal/broker"
	"storefront/internal/domain"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type submissionApplier interface {
	Apply(ctx context.Context, sub *domain.Submission) error
}

// Worker consumes accepted form submissions and applies them with a fixed
// number of goroutines. Messages with the same key always go to the same
// goroutine, so one session's submissions are applied in order. A message is
// committed only after it was applied.
type Worker struct {
	consumer    broker.Consumer
	applier     submissionApplier
	retries     retry.Strategy
	concurrency int
	logger      *zlog.Zerolog
	wg          sync.WaitGroup
}

func NewWorker(consumer broker.Consumer, applier submissionApplier, concurrency int, retries retry.Strategy, logger *zlog.Zerolog) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		consumer:    consumer,
		applier:     applier,
		retries:     retries,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled and every worker goroutine has returned.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info().Int("concurrency", w.concurrency).Msg("Starting submission worker")

	messages := make(chan *broker.Message, w.concurrency*2)
	w.consumer.Start(ctx, messages, w.retries)

	lanes := make([]chan *broker.Message, w.concurrency)
	for i := range lanes {
		lanes[i] = make(chan *broker.Message, 2)
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			w.processWorker(ctx, id, lanes[id])
		}(i)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.dispatch(ctx, messages, lanes)
	}()

	<-ctx.Done()
	w.logger.Info().Msg("Shutting down submission worker gracefully...")
	w.wg.Wait()
	w.logger.Info().Msg("Submission worker stopped")
}

func (w *Worker) dispatch(ctx context.Context, messages <-chan *broker.Message, lanes []chan *broker.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-messages:
			select {
			case lanes[lane(msg.Key, len(lanes))] <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

func lane(key []byte, n int) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % uint32(n))
}

func (w *Worker) processWorker(ctx context.Context, id int, messages <-chan *broker.Message) {
	w.logger.Debug().Int("worker_id", id).Msg("Worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		case msg := <-messages:
			startTime := time.Now()
			if err := w.safeProcessMessage(ctx, id, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int("worker_id", id).
					Int64("offset", msg.Offset).
					Msg("Failed to process message")
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				w.logger.Error().
					Err(err).
					Int64("offset", msg.Offset).
					Int("worker_id", id).
					Msg("Failed to commit message after successful processing")
				continue
			}
			w.logger.Debug().
				Int("worker_id", id).
				Int64("offset", msg.Offset).
				Dur("duration", time.Since(startTime)).
				Msg("Message processed and committed")
		}
	}
}

func (w *Worker) safeProcessMessage(ctx context.Context, workerID int, msg *broker.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("worker_id", workerID).
				Interface("panic", r).
				Int64("offset", msg.Offset).
				Msg("Panic recovered while processing message")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.processMessage(ctx, msg)
}

func (w *Worker) processMessage(ctx context.Context, msg *broker.Message) error {
	sub, err := broker.DecodeSubmission(msg)
	if err != nil {
		w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Dropping malformed submission")
		return err
	}

	w.logger.Info().
		Str("submission_id", sub.ID).
		Str("session", sub.Session).
		Str("form", string(sub.Form)).
		Int64("offset", msg.Offset).
		Msg("Applying submission")

	if err := w.applier.Apply(ctx, sub); err != nil {
		return fmt.Errorf("failed to apply submission %s: %w", sub.ID, err)
	}
	return nil
}
