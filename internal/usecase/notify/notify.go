package notify

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// maxPerSession bounds how many live toasts a session can pile up.
const maxPerSession = 20

// Presenter keeps short-lived, per-session notifications. Expired entries are
// hidden immediately and purged by Run.
type Presenter struct {
	mu     sync.Mutex
	items  map[string][]domain.Notification
	ttl    time.Duration
	now    func() time.Time
	logger *zlog.Zerolog
}

func NewPresenter(ttl time.Duration, logger *zlog.Zerolog) *Presenter {
	if ttl <= 0 {
		ttl = domain.DefaultNotificationTTL
	}
	return &Presenter{
		items:  make(map[string][]domain.Notification),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (p *Presenter) Push(session string, kind domain.NotificationKind, message string) domain.Notification {
	switch kind {
	case domain.NotifyInfo, domain.NotifySuccess, domain.NotifyError, domain.NotifyWarning:
	default:
		kind = domain.NotifyInfo
	}

	now := p.now()
	n := domain.Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}

	p.mu.Lock()
	list := append(p.items[session], n)
	if len(list) > maxPerSession {
		list = list[len(list)-maxPerSession:]
	}
	p.items[session] = list
	p.mu.Unlock()

	p.logger.Debug().Str("session", session).Str("kind", string(kind)).Str("message", message).Msg("Notification pushed")
	return n
}

func (p *Presenter) Success(session, message string) domain.Notification {
	return p.Push(session, domain.NotifySuccess, message)
}

func (p *Presenter) Error(session, message string) domain.Notification {
	return p.Push(session, domain.NotifyError, message)
}

func (p *Presenter) Info(session, message string) domain.Notification {
	return p.Push(session, domain.NotifyInfo, message)
}

// Active returns the unexpired notifications of a session, oldest first.
func (p *Presenter) Active(session string) []domain.Notification {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.Notification, 0, len(p.items[session]))
	for _, n := range p.items[session] {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	return out
}

// Dismiss removes one notification early. It reports whether it was found.
func (p *Presenter) Dismiss(session, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.items[session]
	for i, n := range list {
		if n.ID == id {
			p.items[session] = append(list[:i:i], list[i+1:]...)
			if len(p.items[session]) == 0 {
				delete(p.items, session)
			}
			return true
		}
	}
	return false
}

// Sweep drops expired notifications and returns how many were removed.
func (p *Presenter) Sweep() int {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for session, list := range p.items {
		kept := list[:0]
		for _, n := range list {
			if now.Before(n.ExpiresAt) {
				kept = append(kept, n)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(p.items, session)
		} else {
			p.items[session] = kept
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (p *Presenter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.Sweep(); n > 0 {
				p.logger.Debug().Int("removed", n).Msg("Expired notifications swept")
			}
		}
	}
}
