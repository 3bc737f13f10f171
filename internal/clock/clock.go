// Package clock provides the monotonic time source injected into control loops.
package clock

import (
	"slices"
	"sync"
	"time"
)

// Clock abstracts the time operations a host control loop needs.
type Clock interface {
	// Now returns the current time. Differences between two values from the
	// same Clock are monotonic.
	Now() time.Time

	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration

	// NewTicker returns a Ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks at a fixed interval.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real implements Clock with the standard time package. time.Now carries a
// monotonic reading, so Sub and Since are immune to wall-clock adjustments.
type Real struct{}

func (Real) Now() time.Time                  { return time.Now() }
func (Real) Since(t time.Time) time.Duration { return time.Since(t) }

func (Real) NewTicker(d time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(d)}
}

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.ticker.C }
func (t *realTicker) Stop()               { t.ticker.Stop() }

// Manual is a Clock that only moves when told to. Simulations and tests use it
// to step time deterministically.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManual returns a Manual clock reading t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Manual) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Set moves the clock to t and fires any due tickers. Moving backwards is allowed
// but never fires tickers.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	tickers := slices.Clone(c.tickers)
	c.mu.Unlock()

	for _, tk := range tickers {
		tk.fire(t)
	}
}

// Advance moves the clock forward by d.
func (c *Manual) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// NewTicker returns a ticker that fires when Set or Advance passes its next
// deadline. At most one pending tick is buffered, as with time.Ticker.
func (c *Manual) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tk := &manualTicker{
		clock:    c,
		ch:       make(chan time.Time, 1),
		interval: d,
		next:     c.now.Add(d),
	}
	c.tickers = append(c.tickers, tk)
	return tk
}

type manualTicker struct {
	clock    *Manual
	mu       sync.Mutex
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

// Stop detaches the ticker from its clock. A tick already buffered stays in C.
func (t *manualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()

	c := t.clock
	c.mu.Lock()
	c.tickers = slices.DeleteFunc(c.tickers, func(tk *manualTicker) bool { return tk == t })
	c.mu.Unlock()
}

func (t *manualTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || now.Before(t.next) {
		return
	}
	for !now.Before(t.next) {
		t.next = t.next.Add(t.interval)
	}
	select {
	case t.ch <- now:
	default:
	}
}
