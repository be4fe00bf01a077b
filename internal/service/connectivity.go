package service

import (
	"context"
	"sync"
	"time"
)

// PingProbe answers Online by pinging the store, memoizing the verdict for
// a short interval so hot read paths don't ping on every call.
type PingProbe struct {
	ping func(ctx context.Context) error
	ttl  time.Duration

	mu          sync.Mutex
	lastChecked time.Time
	lastVerdict bool

	now func() time.Time
}

func NewPingProbe(ping func(ctx context.Context) error, ttl time.Duration) *PingProbe {
	return &PingProbe{
		ping: ping,
		ttl:  ttl,
		now:  time.Now,
	}
}

func (p *PingProbe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.lastChecked.IsZero() && p.now().Sub(p.lastChecked) < p.ttl {
		return p.lastVerdict
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	p.lastVerdict = p.ping(ctx) == nil
	p.lastChecked = p.now()
	return p.lastVerdict
}
