package research

import (
	"sync"
	"time"
)

// DefaultBackoff is how long the gate stays closed after a rate-limit signal.
const DefaultBackoff = 30 * time.Second

// RateGate is a process-wide clock gate shared by every research call. After
// a provider rate-limit signal it blocks all calls until the window elapses.
// Its lifetime exceeds any single enrichment request; concurrent requests
// share one instance.
type RateGate struct {
	mu           sync.Mutex
	blockedUntil time.Time
	window       time.Duration
	now          func() time.Time
}

// NewRateGate creates a gate with the given backoff window.
// A zero window falls back to DefaultBackoff.
func NewRateGate(window time.Duration) *RateGate {
	if window <= 0 {
		window = DefaultBackoff
	}
	return &RateGate{
		window: window,
		now:    time.Now,
	}
}

// WithNow sets the clock source for testing.
func (g *RateGate) WithNow(now func() time.Time) *RateGate {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	return g
}

// Blocked reports whether the gate is currently closed.
func (g *RateGate) Blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.blockedUntil)
}

// Block closes the gate for the backoff window starting now. A request never
// shrinks a window another request already set; only a later block time wins.
func (g *RateGate) Block() {
	g.mu.Lock()
	defer g.mu.Unlock()
	until := g.now().Add(g.window)
	if until.After(g.blockedUntil) {
		g.blockedUntil = until
	}
}

// BlockedUntil returns the current block deadline (zero when never blocked).
func (g *RateGate) BlockedUntil() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blockedUntil
}
