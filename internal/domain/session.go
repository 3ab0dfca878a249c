package domain

import "time"

const (
	DefaultMaxActiveSessions = 10000
	DefaultSessionIdleTTL    = 30 * time.Minute
)

// SessionLimits bounds the per-session state held in memory. A session idle for
// longer than IdleTTL is forgotten, and past MaxActive the least recently used
// session is dropped.
type SessionLimits struct {
	MaxActive int
	IdleTTL   time.Duration
}

func (l SessionLimits) WithDefaults() SessionLimits {
	if l.MaxActive <= 0 {
		l.MaxActive = DefaultMaxActiveSessions
	}
	if l.IdleTTL <= 0 {
		l.IdleTTL = DefaultSessionIdleTTL
	}
	return l
}
