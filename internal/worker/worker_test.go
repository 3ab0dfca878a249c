package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/broker"
	"storefront/internal/broker/memory"
	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type fakeApplier struct {
	mu      sync.Mutex
	applied []string
	fail    map[string]bool
	panicOn string
}

func (a *fakeApplier) Apply(_ context.Context, sub *domain.Submission) error {
	if sub.ID == a.panicOn {
		panic("boom")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail[sub.ID] {
		return errors.New("apply failed")
	}
	a.applied = append(a.applied, sub.ID)
	return nil
}

func (a *fakeApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

func TestWorkerAppliesAndCommits(t *testing.T) {
	zlog.Init()
	b := memory.New(domain.KafkaTopicSubmissions, 0, 8)
	defer b.Close()

	applier := &fakeApplier{fail: map[string]bool{"bad": true}, panicOn: "panic"}
	w := NewWorker(b, applier, 2, retry.Strategy{}, &zlog.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	pub := broker.NewSubmissionPublisher(b, retry.Strategy{})
	for _, id := range []string{"a", "bad", "panic", "b"} {
		require.NoError(t, pub.Publish(ctx, &domain.Submission{ID: id, Session: "s1", Form: domain.FormContact}))
	}
	require.NoError(t, b.Send(ctx, retry.Strategy{}, nil, []byte("not json")))

	require.Eventually(t, func() bool { return applier.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return b.IsCommitted(0) && b.IsCommitted(3) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, b.IsCommitted(1))
	assert.False(t, b.IsCommitted(2))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.ElementsMatch(t, []string{"a", "b"}, applier.applied)
}

type orderApplier struct {
	mu   sync.Mutex
	seen map[string][]string
}

func (a *orderApplier) Apply(_ context.Context, sub *domain.Submission) error {
	time.Sleep(time.Duration(len(sub.ID)%3) * time.Millisecond)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen[sub.Session] = append(a.seen[sub.Session], sub.ID)
	return nil
}

func (a *orderApplier) total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, ids := range a.seen {
		n += len(ids)
	}
	return n
}

func TestWorkerKeepsPerSessionOrder(t *testing.T) {
	zlog.Init()
	b := memory.New(domain.KafkaTopicSubmissions, time.Millisecond, 8)
	defer b.Close()

	applier := &orderApplier{seen: make(map[string][]string)}
	w := NewWorker(b, applier, 4, retry.Strategy{}, &zlog.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	const perSession = 50
	sessions := []string{"s1", "s2", "s3"}
	pub := broker.NewSubmissionPublisher(b, retry.Strategy{})
	want := make(map[string][]string)
	for i := 0; i < perSession; i++ {
		for _, s := range sessions {
			id := fmt.Sprintf("%s-%d", s, i)
			want[s] = append(want[s], id)
			require.NoError(t, pub.Publish(ctx, &domain.Submission{ID: id, Session: s, Form: domain.FormContact}))
		}
	}

	require.Eventually(t, func() bool { return applier.total() == perSession*len(sessions) }, 5*time.Second, 10*time.Millisecond)

	applier.mu.Lock()
	defer applier.mu.Unlock()
	for _, s := range sessions {
		assert.Equal(t, want[s], applier.seen[s], "session %s", s)
	}
}
