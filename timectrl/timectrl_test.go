package timectrl

import (
	"testing"
	"time"
)

func TestStepControllerSetStep(t *testing.T) {
	sc := NewStepController(time.Millisecond, time.Millisecond, RealTime)

	sc.SetStep(42)
	if got := sc.Step(); got != 42 {
		t.Fatalf("Step() = %v, want 42", got)
	}
	if got := sc.Now(); got != 42*time.Millisecond {
		t.Fatalf("Now() = %v, want 42ms", got)
	}
}

func TestStepControllerAcceleratedRun(t *testing.T) {
	sc := NewStepController(time.Millisecond, time.Millisecond, Accelerated)

	var steps []int
	sc.AddListener(func(step int) { steps = append(steps, step) })

	done := sc.Start(5)
	<-done

	if got := sc.Step(); got != 5 {
		t.Fatalf("Step() = %v, want 5", got)
	}
	if got := sc.Now(); got != 5*time.Millisecond {
		t.Fatalf("Now() = %v, want 5ms", got)
	}
	if len(steps) != 5 || steps[0] != 1 || steps[4] != 5 {
		t.Fatalf("listener steps = %v, want [1 2 3 4 5]", steps)
	}
}

func TestStepControllerRealTimePacing(t *testing.T) {
	sc := NewStepController(time.Millisecond, 5*time.Millisecond, RealTime)

	start := time.Now()
	<-sc.Start(3)
	elapsed := time.Since(start)

	if got := sc.Step(); got != 3 {
		t.Fatalf("Step() = %v, want 3", got)
	}
	// Three ticks at 5ms each cannot complete much faster than 15ms; the
	// loose bound leaves headroom for timer granularity.
	if elapsed < 12*time.Millisecond {
		t.Fatalf("real-time run finished in %v, want roughly 15ms", elapsed)
	}
}
