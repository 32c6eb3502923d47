package verification

import (
	"context"
	"sync"
	"time"
)

// ResendCooldown is the number of seconds a freshly sent code must wait before it can be resent.
const ResendCooldown = 600

// Countdown counts whole seconds down to zero. Its ticker runs as a task bound to the
// context passed to Start and stops itself at zero; Reset rearms it.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	full      int
	interval  time.Duration
	ctx       context.Context
	running   bool
	wg        sync.WaitGroup
	onTick    func(remaining int)
}

type CountdownOption func(*Countdown)

// WithInterval changes the tick period (one second by default).
func WithInterval(d time.Duration) CountdownOption {
	return func(c *Countdown) { c.interval = d }
}

// WithTickHook calls fn after every tick with the new remaining value.
func WithTickHook(fn func(remaining int)) CountdownOption {
	return func(c *Countdown) { c.onTick = fn }
}

// WithRemaining starts the countdown part way through. Reset still restores the full duration.
func WithRemaining(seconds int) CountdownOption {
	return func(c *Countdown) { c.remaining = seconds }
}

func NewCountdown(seconds int, opts ...CountdownOption) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	c := &Countdown{remaining: seconds, full: seconds, interval: time.Second}
	for _, o := range opts {
		o(c)
	}
	c.remaining = max(0, min(c.remaining, c.full))
	return c
}

// CooldownLeft is what remains of ResendCooldown for a code sent at sentAt.
// A zero sentAt counts as sent just now.
func CooldownLeft(sentAt, now time.Time) int {
	if sentAt.IsZero() {
		return ResendCooldown
	}
	elapsed := int(now.Sub(sentAt) / time.Second)
	return max(0, min(ResendCooldown, ResendCooldown-elapsed))
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Tick decrements by one second, never below zero, and returns the new value.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	n := c.tickLocked()
	fn := c.onTick
	c.mu.Unlock()
	if fn != nil {
		fn(n)
	}
	return n
}

func (c *Countdown) tickLocked() int {
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

// Start binds the ticker to ctx and begins counting. Calling Start again while it runs is a no-op.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
	c.launchLocked()
}

// Reset restores the full duration and restarts the ticker if Start was called earlier.
func (c *Countdown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = c.full
	c.launchLocked()
}

// Wait blocks until the ticker goroutine has exited.
func (c *Countdown) Wait() { c.wg.Wait() }

func (c *Countdown) launchLocked() {
	if c.running || c.ctx == nil || c.ctx.Err() != nil || c.remaining == 0 {
		return
	}
	c.running = true
	c.wg.Add(1)
	go c.run(c.ctx)
}

func (c *Countdown) run(ctx context.Context) {
	defer c.wg.Done()
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			return
		case <-t.C:
			c.mu.Lock()
			n := c.tickLocked()
			if n == 0 {
				c.running = false
			}
			fn := c.onTick
			c.mu.Unlock()
			if fn != nil {
				fn(n)
			}
			if n == 0 {
				return
			}
		}
	}
}
