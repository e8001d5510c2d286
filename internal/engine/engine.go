// Package engine drives the simulation clock in real time, fanning each
// tick out to the game systems and the campaign evaluator.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the wall-clock length of one tick at speed 1.0.
const DefaultInterval = 200 * time.Millisecond

// Engine advances the simulation on a fixed cadence. Speed scales the
// tick interval; 0 or below pauses the loop without stopping it.
type Engine struct {
	Interval  time.Duration
	PollTicks uint64 // objective/event poll cadence, in ticks

	// Callbacks, populated during setup. Nil callbacks are skipped.
	OnTick     func() // every tick
	OnPoll     func() // every PollTicks ticks
	OnAutosave func() // on the configured wall-clock cadence

	mu       sync.Mutex
	speed    float64
	running  bool
	ticks    uint64
	autosave time.Duration // 0 disables
	lastSave time.Time
}

// New returns an engine with default pacing and autosave disabled.
func New() *Engine {
	return &Engine{
		Interval:  DefaultInterval,
		PollTicks: 5,
		speed:     1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Values at or below zero pause
// the loop; values above 4 are clamped.
func (e *Engine) SetSpeed(speed float64) {
	if speed > 4 {
		speed = 4
	}
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
	slog.Info("engine speed changed", "speed", speed)
}

// SetAutosaveInterval sets the wall-clock autosave cadence. Zero disables
// autosaving.
func (e *Engine) SetAutosaveInterval(d time.Duration) {
	e.mu.Lock()
	e.autosave = d
	e.lastSave = time.Now()
	e.mu.Unlock()
}

// Run starts the loop and blocks until Stop is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	e.lastSave = time.Now()
	e.mu.Unlock()
	slog.Info("engine started", "interval", e.Interval, "poll_ticks", e.PollTicks)

	for {
		e.mu.Lock()
		running, speed := e.running, e.speed
		e.mu.Unlock()
		if !running {
			break
		}
		if speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step()
		e.maybeAutosave(start)

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("engine stopped", "ticks", e.Ticks())
}

// Stop halts the loop. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// Ticks returns the number of ticks stepped since startup. Monotonic,
// never reset.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

func (e *Engine) step() {
	e.mu.Lock()
	e.ticks++
	n := e.ticks
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick()
	}
	if e.PollTicks > 0 && n%e.PollTicks == 0 && e.OnPoll != nil {
		e.OnPoll()
	}
}

func (e *Engine) maybeAutosave(now time.Time) {
	e.mu.Lock()
	due := e.autosave > 0 && now.Sub(e.lastSave) >= e.autosave
	if due {
		e.lastSave = now
	}
	e.mu.Unlock()

	if due && e.OnAutosave != nil {
		e.OnAutosave()
	}
}
