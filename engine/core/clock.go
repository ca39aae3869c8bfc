package core

import "time"

// MaxFrameDelta caps the delta handed to a frame so a stall (window drag,
// breakpoint) does not fling the camera.
const MaxFrameDelta = 0.25

// Clock measures session time and the delta between frames.
type Clock struct {
	start    time.Time
	elapsed  time.Duration
	lastTick time.Duration
	now      func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Update refreshes the elapsed time. Stopped clocks keep their last value.
func (c *Clock) Update() {
	if c.start.IsZero() {
		return
	}
	c.elapsed = c.now().Sub(c.start)
}

// Start resets the clock to zero and begins measuring.
func (c *Clock) Start() {
	c.start = c.now()
	c.elapsed = 0
	c.lastTick = 0
}

// Stop freezes the clock without resetting the elapsed time.
func (c *Clock) Stop() {
	c.start = time.Time{}
}

func (c *Clock) IsRunning() bool {
	return !c.start.IsZero()
}

// Elapsed returns the seconds between Start and the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

/**
 * @brief Updates the clock and returns the seconds since the previous Tick,
 * capped at MaxFrameDelta.
 */
func (c *Clock) Tick() float64 {
	c.Update()
	delta := (c.elapsed - c.lastTick).Seconds()
	c.lastTick = c.elapsed
	if delta > MaxFrameDelta {
		return MaxFrameDelta
	}
	return delta
}
