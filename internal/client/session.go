package client

import (
	"context"
	"log"
	"sync"
	"time"
)

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Session, error)
}

// SessionKeeper renews the access token shortly before it expires. Failed
// refreshes are retried on the next tick.
type SessionKeeper struct {
	refresher Refresher
	interval  time.Duration
	threshold time.Duration
	logger    *log.Logger
	now       func() time.Time

	mu      sync.RWMutex
	session Session
	onRenew func(Session)
}

func NewSessionKeeper(refresher Refresher, initial Session, logger *log.Logger) *SessionKeeper {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionKeeper{
		refresher: refresher,
		interval:  time.Minute,
		threshold: 5 * time.Minute,
		logger:    logger,
		now:       time.Now,
		session:   initial,
	}
}

func (k *SessionKeeper) SetInterval(d time.Duration) {
	if d > 0 {
		k.interval = d
	}
}

// OnRenew registers a callback run after every successful refresh.
func (k *SessionKeeper) OnRenew(fn func(Session)) {
	k.mu.Lock()
	k.onRenew = fn
	k.mu.Unlock()
}

func (k *SessionKeeper) Current() Session {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.session
}

// Run blocks until ctx is cancelled.
func (k *SessionKeeper) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.Tick(ctx)
		}
	}
}

// Tick refreshes when the access token expires within the threshold and
// reports whether a refresh happened.
func (k *SessionKeeper) Tick(ctx context.Context) bool {
	current := k.Current()
	if current.RefreshToken == "" {
		return false
	}
	if current.ExpiresAt.Sub(k.now()) > k.threshold {
		return false
	}

	next, err := k.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		k.logger.Printf("[Session] refresh failed expires_at=%s err=%v", current.ExpiresAt.Format(time.RFC3339), err)
		return false
	}

	k.mu.Lock()
	k.session = next
	cb := k.onRenew
	k.mu.Unlock()

	k.logger.Printf("[Session] token refreshed expires_at=%s", next.ExpiresAt.Format(time.RFC3339))
	if cb != nil {
		cb(next)
	}
	return true
}
