package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/wb-go/wbf/zlog"
)

var ErrClosed = errors.New("upload coordinator closed")

// Result is handed to the delivery callback once a job finishes.
type Result struct {
	Session string
	Slot    domain.Slot
	Token   uint64
	Image   *domain.EncodedImage
	Err     error
}

// Deliver receives the result of the latest upload for a (session, slot). It runs
// with the coordinator lock held and must not call back into the Coordinator.
type Deliver func(Result)

type slotKey struct {
	session string
	slot    domain.Slot
}

type slotState struct {
	gen      uint64
	inflight int
	touched  time.Time
}

// Coordinator runs image processing off the request path. Every (session, slot)
// carries a generation counter; only the newest token's result is delivered.
// Counters of idle slots with nothing in flight are dropped by Sweep.
type Coordinator struct {
	processor imageProcessor
	targets   map[domain.Slot]domain.Target
	logger    *zlog.Zerolog

	mu     sync.Mutex
	gens   map[slotKey]*slotState
	closed bool

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCoordinator(processor imageProcessor, targets map[domain.Slot]domain.Target, maxConcurrent int, logger *zlog.Zerolog) *Coordinator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		processor: processor,
		targets:   targets,
		logger:    logger,
		gens:      make(map[slotKey]*slotState),
		sem:       make(chan struct{}, maxConcurrent),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit validates file synchronously and, on success, schedules decode and
// re-encode. The returned token identifies this upload; deliver fires once, and
// only if no newer upload for the same slot was submitted meanwhile.
func (c *Coordinator) Submit(session string, slot domain.Slot, file domain.SourceFile, deliver Deliver) (uint64, error) {
	target, ok := c.targets[slot]
	if !ok {
		return 0, fmt.Errorf("unknown upload slot %q", slot)
	}

	if err := c.processor.Validate(&file, target.MaxBytes); err != nil {
		c.logger.Info().
			Err(err).
			Str("session", session).
			Str("slot", string(slot)).
			Str("mime_type", file.MIMEType).
			Int64("size", file.Size).
			Msg("Upload rejected")
		return 0, err
	}

	key := slotKey{session: session, slot: slot}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	st, ok := c.gens[key]
	if !ok {
		st = &slotState{}
		c.gens[key] = st
	}
	st.gen++
	st.inflight++
	st.touched = time.Now()
	token := st.gen
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(key, token, file, target, deliver)

	c.logger.Debug().
		Str("session", session).
		Str("slot", string(slot)).
		Uint64("token", token).
		Msg("Upload scheduled")

	return token, nil
}

func (c *Coordinator) run(key slotKey, token uint64, file domain.SourceFile, target domain.Target, deliver Deliver) {
	defer c.wg.Done()

	select {
	case c.sem <- struct{}{}:
	case <-c.ctx.Done():
		c.mu.Lock()
		c.gens[key].inflight--
		c.mu.Unlock()
		return
	}
	defer func() { <-c.sem }()

	start := time.Now()
	img, err := c.process(file, target)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Entries with work in flight are never swept, so st is present.
	st := c.gens[key]
	st.inflight--
	st.touched = time.Now()

	if st.gen != token {
		c.logger.Info().
			Str("session", key.session).
			Str("slot", string(key.slot)).
			Uint64("token", token).
			Uint64("latest", st.gen).
			Msg("Discarding superseded upload result")
		return
	}

	c.logger.Debug().
		Str("session", key.session).
		Str("slot", string(key.slot)).
		Uint64("token", token).
		Dur("duration", time.Since(start)).
		Bool("ok", err == nil).
		Msg("Upload processed")

	deliver(Result{
		Session: key.session,
		Slot:    key.slot,
		Token:   token,
		Image:   img,
		Err:     err,
	})
}

func (c *Coordinator) process(file domain.SourceFile, target domain.Target) (img *domain.EncodedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("filename", file.Name).Msg("Panic recovered while processing upload")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.processor.Process(c.ctx, file, target)
}

// Latest returns the newest token issued for a slot, 0 if none.
func (c *Coordinator) Latest(session string, slot domain.Slot) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.gens[slotKey{session: session, slot: slot}]; ok {
		return st.gen
	}
	return 0
}

// Supersede bumps the slot generation without scheduling work, so any in-flight
// result for it is dropped. Used when the slot is cleared by the user. A slot
// with no counter has nothing in flight and is left alone.
func (c *Coordinator) Supersede(session string, slot domain.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.gens[slotKey{session: session, slot: slot}]; ok {
		st.gen++
		st.touched = time.Now()
	}
}

// Sweep forgets the counters of slots untouched for at least idle that have
// no job in flight. It returns how many were removed.
func (c *Coordinator) Sweep(idle time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, st := range c.gens {
		if st.inflight == 0 && time.Since(st.touched) >= idle {
			delete(c.gens, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle slots every interval until ctx is done.
func (c *Coordinator) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(idle); n > 0 {
				c.logger.Debug().Int("removed", n).Msg("Idle upload slots swept")
			}
		}
	}
}

// Wait blocks until every scheduled job has finished or been dropped.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
