package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kenokrieger/lectron/internal/logging"
)

const tracerName = "github.com/kenokrieger/lectron/core"

// StepMetrics receives per-step measurements from the engine. Implemented
// by observability.SimCollector; a nil recorder disables recording.
type StepMetrics interface {
	ObserveStep(active, total int, elapsed time.Duration)
}

// SimulationEngine drives a board through discrete simulation steps and
// fans out step notifications to registered listeners. Listeners are the
// seam for external collaborators (recorders, pacing controllers, demo
// output) that harvest board state without the core depending on them.
type SimulationEngine struct {
	Board *Board

	log           logging.Logger
	metrics       StepMetrics
	stepListeners []func(step int)
	step          int
}

// NewSimulationEngine wraps a board. Logging defaults to a no-op logger.
func NewSimulationEngine(board *Board) *SimulationEngine {
	return &SimulationEngine{
		Board: board,
		log:   logging.Noop(),
	}
}

// SetLogger replaces the engine's logger. A nil logger restores the no-op.
func (se *SimulationEngine) SetLogger(log logging.Logger) {
	if log == nil {
		log = logging.Noop()
	}
	se.log = log
}

// SetMetrics attaches a per-step metrics recorder.
func (se *SimulationEngine) SetMetrics(m StepMetrics) { se.metrics = m }

// RegisterStepListener adds a callback invoked after every completed step
// with the total step count so far.
func (se *SimulationEngine) RegisterStepListener(fn func(step int)) {
	se.stepListeners = append(se.stepListeners, fn)
}

// Steps returns the number of steps completed so far.
func (se *SimulationEngine) Steps() int { return se.step }

// StepOnce advances the board by a single step, records metrics and
// notifies listeners. Pacing controllers call this once per tick.
func (se *SimulationEngine) StepOnce(ctx context.Context) error {
	start := time.Now()
	if err := se.Board.Advance(); err != nil {
		return fmt.Errorf("advance at step %d: %w", se.step, err)
	}
	se.step++

	if se.metrics != nil {
		active := 0
		for _, on := range se.Board.States() {
			if on {
				active++
			}
		}
		se.metrics.ObserveStep(active, se.Board.Size(), time.Since(start))
	}
	for _, fn := range se.stepListeners {
		fn(se.step)
	}
	return nil
}

// Run advances the board by the given number of steps, checking the
// context between steps. The run is traced as a single span.
func (se *SimulationEngine) Run(ctx context.Context, steps int) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "engine.run",
		trace.WithAttributes(
			attribute.Int("sim.steps", steps),
			attribute.Int("sim.blocks", se.Board.Size()),
		),
	)
	defer span.End()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			return fmt.Errorf("run cancelled after %d steps: %w", i, ctx.Err())
		default:
		}
		if err := se.StepOnce(ctx); err != nil {
			span.RecordError(err)
			return err
		}
	}

	se.log.Debug(ctx, "run complete",
		logging.Int("steps", steps),
		logging.Int("total_steps", se.step),
		logging.Int("blocks", se.Board.Size()),
	)
	return nil
}
