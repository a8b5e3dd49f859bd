package core

import (
	"context"
	"strings"
	"testing"
)

func TestStepRecorderCapturesRows(t *testing.T) {
	bd := NewBoard()
	on := NewBlock("GENE")
	on.SetThreshold(0)
	bd.AddBlock(on)
	bd.AddBlock(NewBlock("")) // unlabelled
	on.TurnOn(bd.Params())

	se := NewSimulationEngine(bd)
	rec := NewStepRecorder(bd)
	se.RegisterStepListener(rec.Listen)

	if err := se.Run(context.Background(), 4); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rec.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
	row := rec.Row(0)
	if !row[0] || row[1] {
		t.Fatalf("Row(0) = %v, want [true false]", row)
	}
}

func TestStepRecorderWriteCSV(t *testing.T) {
	bd := NewBoard()
	on := NewBlock("GENE")
	on.SetThreshold(0)
	bd.AddBlock(on)
	bd.AddBlock(NewBlock(""))
	on.TurnOn(bd.Params())

	se := NewSimulationEngine(bd)
	rec := NewStepRecorder(bd)
	se.RegisterStepListener(rec.Listen)

	if err := se.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buf strings.Builder
	if err := rec.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want header + 2 rows:\n%s", len(lines), buf.String())
	}
	if lines[0] != "step,GENE,block_1" {
		t.Fatalf("header = %q, want %q", lines[0], "step,GENE,block_1")
	}
	if lines[1] != "1,1,0" {
		t.Fatalf("first row = %q, want %q", lines[1], "1,1,0")
	}
}

// Structural board edits after recording must not shift the exported
// columns away from what the rows captured.
func TestStepRecorderHeaderPinnedToRecording(t *testing.T) {
	bd := NewBoard()
	on := NewBlock("GENE")
	on.SetThreshold(0)
	bd.AddBlock(on)
	on.TurnOn(bd.Params())

	se := NewSimulationEngine(bd)
	rec := NewStepRecorder(bd)
	se.RegisterStepListener(rec.Listen)

	if err := se.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The board changes shape after the recording ended.
	bd.AddBlock(NewBlock("LATE"))

	var buf strings.Builder
	if err := rec.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "step,GENE" {
		t.Fatalf("header = %q, want %q", lines[0], "step,GENE")
	}
	if lines[1] != "1,1" {
		t.Fatalf("first row = %q, want %q", lines[1], "1,1")
	}
}
