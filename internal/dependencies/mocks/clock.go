package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/mafiagame-go/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing
// Tickers never fire on their own; tests drive them with Tick
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	tickers     []chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// NewTicker returns a manually driven ticker
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.tickers = append(c.tickers, ch)
	return &mockTicker{clock: c, ch: ch}
}

// Tick advances the clock by d and fires every open ticker once.
// Delivery is best-effort: a ticker whose consumer is busy or gone drops
// the tick instead of blocking, so tests should assert with Eventually.
func (c *MockClock) Tick(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	now := c.CurrentTime
	tickers := make([]chan time.Time, len(c.tickers))
	copy(tickers, c.tickers)
	c.mu.Unlock()
	for _, ch := range tickers {
		select {
		case ch <- now:
		default:
		}
	}
}

func (c *MockClock) removeTicker(ch chan time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.tickers {
		if t == ch {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}

type mockTicker struct {
	clock *MockClock
	ch    chan time.Time
}

func (t *mockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop detaches the ticker so later Tick calls no longer target it
func (t *mockTicker) Stop() {
	t.clock.removeTicker(t.ch)
}
