package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPresenter() (*Presenter, *fakeClock) {
	zlog.Init()
	clock := &fakeClock{t: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	p := NewPresenter(3*time.Second, &zlog.Logger)
	p.now = clock.now
	return p, clock
}

func TestPushAndExpire(t *testing.T) {
	p, clock := newTestPresenter()

	n := p.Success("s1", "Pengaturan header berhasil diterapkan!")
	assert.Equal(t, domain.NotifySuccess, n.Kind)
	assert.Equal(t, clock.t.Add(3*time.Second), n.ExpiresAt)

	active := p.Active("s1")
	require.Len(t, active, 1)
	assert.Equal(t, n.ID, active[0].ID)
	assert.Empty(t, p.Active("s2"))

	clock.advance(2999 * time.Millisecond)
	assert.Len(t, p.Active("s1"), 1)

	clock.advance(time.Millisecond)
	assert.Empty(t, p.Active("s1"))
}

func TestUnknownKindFallsBackToInfo(t *testing.T) {
	p, _ := newTestPresenter()
	n := p.Push("s1", "fatal", "x")
	assert.Equal(t, domain.NotifyInfo, n.Kind)
}

func TestDismiss(t *testing.T) {
	p, _ := newTestPresenter()
	a := p.Info("s1", "a")
	b := p.Error("s1", "b")

	assert.True(t, p.Dismiss("s1", a.ID))
	assert.False(t, p.Dismiss("s1", a.ID))
	assert.False(t, p.Dismiss("s2", b.ID))

	active := p.Active("s1")
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)
}

func TestSweep(t *testing.T) {
	p, clock := newTestPresenter()
	p.Info("s1", "old")
	clock.advance(2 * time.Second)
	p.Info("s1", "new")
	p.Info("s2", "other")

	clock.advance(1500 * time.Millisecond)
	assert.Equal(t, 1, p.Sweep())
	assert.Len(t, p.Active("s1"), 1)

	clock.advance(5 * time.Second)
	assert.Equal(t, 2, p.Sweep())
	assert.Empty(t, p.items)
}

func TestPerSessionCap(t *testing.T) {
	p, _ := newTestPresenter()
	for i := 0; i < maxPerSession+5; i++ {
		p.Info("s1", fmt.Sprint(i))
	}
	active := p.Active("s1")
	require.Len(t, active, maxPerSession)
	assert.Equal(t, "5", active[0].Message)
}

func TestRunStopsOnCancel(t *testing.T) {
	p, _ := newTestPresenter()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
