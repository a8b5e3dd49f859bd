package timectrl

import (
	"sync"
	"time"
)

// SimClock is an interface for reading simulated time. Components that
// only need to know how far a run has progressed depend on this rather
// than on the concrete controller.
type SimClock interface {
	// Now returns the simulated elapsed time, steps completed times the
	// step size.
	Now() time.Duration
	// Step returns the number of completed steps.
	Step() int
}

// Mode describes how the StepController paces simulation steps.
type Mode int

const (
	// RealTime issues one step per wall-clock Interval, so one simulated
	// millisecond takes one real millisecond at the default step size.
	RealTime Mode = iota
	// Accelerated issues steps as fast as the loop can run.
	Accelerated
)

// StepController paces a fixed-step simulation and notifies registered
// listeners on every step. It does not advance any board itself; a
// listener typically calls the engine's StepOnce. It implements SimClock.
type StepController struct {
	mu sync.RWMutex

	// DeltaT is the simulated duration of one step.
	DeltaT time.Duration
	// Interval is the wall-clock duration per step in RealTime mode.
	Interval time.Duration
	Mode     Mode

	step      int
	listeners []func(step int)
}

// NewStepController constructs a controller. deltaT is the simulated step
// size, interval the wall-clock pacing used in RealTime mode.
func NewStepController(deltaT, interval time.Duration, mode Mode) *StepController {
	return &StepController{
		DeltaT:   deltaT,
		Interval: interval,
		Mode:     mode,
	}
}

// Now returns the simulated elapsed time. Implements SimClock.
func (sc *StepController) Now() time.Duration {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return time.Duration(sc.step) * sc.DeltaT
}

// Step returns the number of completed steps. Implements SimClock.
func (sc *StepController) Step() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.step
}

// SetStep overrides the step counter, e.g. when resuming a recorded run.
func (sc *StepController) SetStep(step int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.step = step
}

// AddListener registers a callback invoked on every step with the step
// count after the step. Listeners must be registered before Start.
func (sc *StepController) AddListener(fn func(step int)) {
	sc.listeners = append(sc.listeners, fn)
}

// Start runs the controller for the given number of steps in a separate
// goroutine. It returns a channel that is closed when the controller
// finishes.
func (sc *StepController) Start(steps int) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var ticker *time.Ticker
		if sc.Mode == RealTime {
			ticker = time.NewTicker(sc.Interval)
			defer ticker.Stop()
		}

		for i := 0; i < steps; i++ {
			if ticker != nil {
				<-ticker.C
			}

			sc.mu.Lock()
			sc.step++
			current := sc.step
			sc.mu.Unlock()

			for _, fn := range sc.listeners {
				fn(current)
			}
		}
	}()
	return done
}
