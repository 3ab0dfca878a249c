package memory

import (
	"context"
	"sync"
	"time"

	"storefront/internal/broker"

	"github.com/wb-go/wbf/retry"
)

type pending struct {
	msg     *broker.Message
	readyAt time.Time
}

// Broker is an in-process loopback used when no Kafka brokers are configured.
// Each message becomes visible to the consumer after a fixed latency. Delivery
// is strictly FIFO in send order.
type Broker struct {
	topic   string
	latency time.Duration
	queue   chan *broker.Message
	wake    chan struct{}

	mu        sync.Mutex
	backlog   []pending
	offset    int64
	committed map[int64]bool
	low       int64
	closed    bool
	done      chan struct{}
	loop      sync.WaitGroup
}

func New(topic string, latency time.Duration, buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	b := &Broker{
		topic:     topic,
		latency:   latency,
		queue:     make(chan *broker.Message, buffer),
		wake:      make(chan struct{}, 1),
		committed: make(map[int64]bool),
		low:       -1,
		done:      make(chan struct{}),
	}

	b.loop.Add(1)
	go b.deliver()
	return b
}

func (b *Broker) Send(ctx context.Context, _ retry.Strategy, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return broker.ErrClosed
	}
	msg := &broker.Message{
		Topic:  b.topic,
		Offset: b.offset,
		Key:    append([]byte(nil), key...),
		Value:  append([]byte(nil), value...),
	}
	b.offset++
	b.backlog = append(b.backlog, pending{msg: msg, readyAt: time.Now().Add(b.latency)})
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
	return nil
}

// deliver is the only reader of backlog. Ready times never decrease, so
// waiting on the head keeps send order.
func (b *Broker) deliver() {
	defer b.loop.Done()

	for {
		b.mu.Lock()
		if len(b.backlog) == 0 {
			b.mu.Unlock()
			select {
			case <-b.wake:
				continue
			case <-b.done:
				return
			}
		}
		next := b.backlog[0]
		b.mu.Unlock()

		if wait := time.Until(next.readyAt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-b.done:
				timer.Stop()
				return
			}
		}

		select {
		case b.queue <- next.msg:
		case <-b.done:
			return
		}

		b.mu.Lock()
		b.backlog[0] = pending{}
		b.backlog = b.backlog[1:]
		b.mu.Unlock()
	}
}

func (b *Broker) Start(ctx context.Context, out chan<- *broker.Message, _ retry.Strategy) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case msg := <-b.queue:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				case <-b.done:
					return
				}
			}
		}
	}()
}

// Commit records one offset. The committed position only advances over a
// contiguous run, so an uncommitted earlier offset holds it back.
func (b *Broker) Commit(_ context.Context, msg *broker.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Offset <= b.low {
		return nil
	}
	b.committed[msg.Offset] = true
	for b.committed[b.low+1] {
		delete(b.committed, b.low+1)
		b.low++
	}
	return nil
}

// Committed returns the highest offset below which everything is committed,
// -1 if none.
func (b *Broker) Committed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.low
}

func (b *Broker) IsCommitted(offset int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return offset <= b.low || b.committed[offset]
}

// Close drops undelivered messages and stops consumers.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	b.loop.Wait()
	return nil
}
