package main

import (
	"context"
	"os"
	"testing"

	"github.com/kenokrieger/lectron/core"
	"github.com/kenokrieger/lectron/kb"
)

// TestIntegration_YeastCellCycleOnset runs the shipped yeast pathway
// end to end: stimulus phase, then a measured run long enough for the
// G1 transcription factors downstream of CLN3 to switch on.
func TestIntegration_YeastCellCycleOnset(t *testing.T) {
	f, err := os.Open("../../configs/yeast_cell_cycle.json")
	if err != nil {
		t.Fatalf("open pathway definition: %v", err)
	}
	defer f.Close()

	def, err := core.LoadPathway(f)
	if err != nil {
		t.Fatalf("LoadPathway: %v", err)
	}

	library := kb.NewLibrary()
	if err := library.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}
	board, err := library.Build(def.Name)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := board.Size(); got != 12 {
		t.Fatalf("board size = %d, want 12", got)
	}

	ctx := context.Background()
	engine := core.NewSimulationEngine(board)

	cln3, err := board.Block(def.Stimulus.Label)
	if err != nil {
		t.Fatalf("stimulus block: %v", err)
	}
	for i := 0; i < def.Stimulus.Steps; i++ {
		cln3.TurnOn(board.Params())
		if err := engine.StepOnce(ctx); err != nil {
			t.Fatalf("stimulus step %d: %v", i, err)
		}
	}
	if !cln3.Active(board.Params()) {
		t.Fatalf("CLN3 inactive after %d stimulus steps", def.Stimulus.Steps)
	}

	recorder := core.NewStepRecorder(board)
	engine.RegisterStepListener(recorder.Listen)

	const measuredSteps = 12000
	if err := engine.Run(ctx, measuredSteps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if recorder.Len() != measuredSteps {
		t.Fatalf("recorder captured %d rows, want %d", recorder.Len(), measuredSteps)
	}

	cln3Idx := blockIndex(t, board, "CLN3")
	mbfIdx := blockIndex(t, board, "MBF")
	sbfIdx := blockIndex(t, board, "SBF")

	mbfOn := firstActiveStep(recorder, mbfIdx)
	sbfOn := firstActiveStep(recorder, sbfIdx)
	if mbfOn < 0 {
		t.Fatalf("MBF never activated within %d measured steps", measuredSteps)
	}
	if sbfOn < 0 {
		t.Fatalf("SBF never activated within %d measured steps", measuredSteps)
	}
	if mbfOn == 0 || sbfOn == 0 {
		t.Fatalf("MBF (%d) and SBF (%d) must lag the stimulus, not start active", mbfOn, sbfOn)
	}

	// Without the stimulus supply CLN3 discharges and eventually drops
	// out of its hysteresis band.
	first := recorder.Row(0)
	last := recorder.Row(recorder.Len() - 1)
	if !first[cln3Idx] {
		t.Fatalf("CLN3 should still be active on the first measured step")
	}
	if last[cln3Idx] {
		t.Fatalf("CLN3 should have decayed to inactive by step %d", measuredSteps)
	}
	if !last[mbfIdx] {
		t.Fatalf("MBF should still be latched active at step %d", measuredSteps)
	}
}

func blockIndex(t *testing.T, board *core.Board, label string) int {
	t.Helper()
	blk, err := board.Block(label)
	if err != nil {
		t.Fatalf("Block(%q): %v", label, err)
	}
	idx, err := board.Index(blk)
	if err != nil {
		t.Fatalf("Index(%q): %v", label, err)
	}
	return idx
}

func firstActiveStep(r *core.StepRecorder, idx int) int {
	for i := 0; i < r.Len(); i++ {
		if r.Row(i)[idx] {
			return i
		}
	}
	return -1
}
