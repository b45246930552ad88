package timer

import (
	"context"
	"sync"
	"time"

	"github.com/enigma29/cluehunt/internal/dependencies/clock"
)

// Level classifies how much time is left, for display only
type Level string

const (
	LevelNormal Level = "normal"
	// LevelLowTime means under five minutes remain
	LevelLowTime Level = "low_time"
	// LevelWarning means under two minutes remain
	LevelWarning Level = "warning"
)

const (
	tickInterval     = time.Second
	lowTimeThreshold = 5 * time.Minute
	warningThreshold = 2 * time.Minute
)

// Countdown tracks the remaining game time against a shared end time and
// fires a callback exactly once when it runs out. Ticks, reconciliation
// pushes, and manual checks can all observe expiry; the latch makes sure
// redundant observers cannot fire the callback twice.
type Countdown struct {
	clock    clock.Clock
	onTimeUp func()

	mu      sync.Mutex
	endTime time.Time
	fired   bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func New(clk clock.Clock, endTime time.Time, onTimeUp func()) *Countdown {
	return &Countdown{
		clock:    clk,
		onTimeUp: onTimeUp,
		endTime:  endTime,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the one-second tick loop until expiry, Stop, or context
// cancellation
func (c *Countdown) Start(ctx context.Context) {
	go func() {
		defer close(c.doneCh)

		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				if c.Tick() {
					return
				}
			}
		}
	}()
}

// Tick checks the remaining time and fires the expiry callback if it has
// run out. Returns true once the countdown is over. Exposed so expiry can
// be observed outside the ticker loop without racing it.
func (c *Countdown) Tick() bool {
	c.mu.Lock()
	if c.fired {
		c.mu.Unlock()
		return true
	}
	if c.clock.Now().Before(c.endTime) {
		c.mu.Unlock()
		return false
	}
	c.fired = true
	callback := c.onTimeUp
	c.mu.Unlock()

	if callback != nil {
		callback()
	}
	return true
}

// Stop cancels the tick loop. Safe to call more than once and safe to
// call before Start.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Done is closed once the tick loop has exited
func (c *Countdown) Done() <-chan struct{} {
	return c.doneCh
}

// Remaining returns the time left, floored at zero
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := c.endTime.Sub(c.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Level classifies the remaining time for display
func (c *Countdown) Level() Level {
	remaining := c.Remaining()
	switch {
	case remaining < warningThreshold:
		return LevelWarning
	case remaining < lowTimeThreshold:
		return LevelLowTime
	default:
		return LevelNormal
	}
}

// SetEndTime adopts a changed shared end time mid-game, e.g. after a
// teammate ends the session early
func (c *Countdown) SetEndTime(endTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = endTime
}
