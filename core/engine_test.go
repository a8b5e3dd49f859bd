package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"
)

type capturingMetrics struct {
	active []int
	total  []int
}

func (c *capturingMetrics) ObserveStep(active, total int, elapsed time.Duration) {
	c.active = append(c.active, active)
	c.total = append(c.total, total)
}

func TestEngineRunCountsSteps(t *testing.T) {
	bd := NewBoard()
	bd.AddBlock(NewBlock("x"))
	se := NewSimulationEngine(bd)

	var seen []int
	se.RegisterStepListener(func(step int) { seen = append(seen, step) })

	if err := se.Run(context.Background(), 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := se.Steps(); got != 3 {
		t.Fatalf("Steps() = %d, want 3", got)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("listener steps = %v, want [1 2 3]", seen)
	}

	// Step counts continue across runs.
	if err := se.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := se.Steps(); got != 5 {
		t.Fatalf("Steps() after second run = %d, want 5", got)
	}
}

func TestEngineRunRecordsMetrics(t *testing.T) {
	bd := NewBoard()
	on := NewBlock("on")
	on.SetThreshold(0) // charges unconditionally, stays on
	bd.AddBlock(on)
	bd.AddBlock(NewBlock("off"))
	on.TurnOn(bd.Params())

	se := NewSimulationEngine(bd)
	m := &capturingMetrics{}
	se.SetMetrics(m)

	if err := se.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(m.active) != 2 {
		t.Fatalf("metrics observed %d steps, want 2", len(m.active))
	}
	if m.total[0] != 2 {
		t.Fatalf("total blocks = %d, want 2", m.total[0])
	}
	if m.active[0] != 1 {
		t.Fatalf("active blocks = %d, want 1", m.active[0])
	}
}

func TestEngineRunCancelled(t *testing.T) {
	bd := NewBoard()
	bd.AddBlock(NewBlock("x"))
	se := NewSimulationEngine(bd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := se.Run(ctx, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on cancelled context = %v, want context.Canceled", err)
	}
	if got := se.Steps(); got != 0 {
		t.Fatalf("Steps() = %d, want 0 after immediate cancellation", got)
	}
}

func TestEngineRunPropagatesShapeError(t *testing.T) {
	bd := NewBoard()
	bd.AddBlock(NewBlock("x"))
	bd.SetConnections(mat.NewDense(2, 2, nil))

	se := NewSimulationEngine(bd)
	err := se.Run(context.Background(), 1)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("Run = %v, want ErrShapeMismatch", err)
	}
}
