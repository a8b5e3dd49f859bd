package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// StepRecorder harvests the board's activity pattern after every step it is
// notified of. It is the in-repo example of the external-collaborator role:
// downstream plotting and analysis consume its CSV export, while the core
// knows nothing about it beyond the listener seam.
//
// Attach it with engine.RegisterStepListener(rec.Listen). Note that reading
// the states latches every block's comparator, which is the documented
// behaviour of Board.States.
type StepRecorder struct {
	board  *Board
	labels []string
	steps  []int
	rows   [][]bool
}

// NewStepRecorder records activity snapshots of the given board.
func NewStepRecorder(board *Board) *StepRecorder {
	return &StepRecorder{board: board}
}

// Listen captures the current activity pattern under the given step number.
// The first call pins the column labels, so later structural edits to the
// board cannot misalign the exported header against the recorded rows.
func (r *StepRecorder) Listen(step int) {
	if r.labels == nil {
		r.labels = make([]string, 0, r.board.Size())
		for i, b := range r.board.Blocks() {
			label := b.Label()
			if label == "" {
				label = fmt.Sprintf("block_%d", i)
			}
			r.labels = append(r.labels, label)
		}
	}
	r.steps = append(r.steps, step)
	r.rows = append(r.rows, r.board.States())
}

// Len returns the number of recorded snapshots.
func (r *StepRecorder) Len() int { return len(r.rows) }

// Row returns the activity pattern recorded for snapshot i.
func (r *StepRecorder) Row(i int) []bool { return r.rows[i] }

// WriteCSV exports the recorded time series: one header row of the block
// labels captured on the first Listen call (unlabelled blocks appear as
// block_<index>), then one row per step with the step number and 0/1
// activities.
func (r *StepRecorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"step"}, r.labels...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range r.rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.Itoa(r.steps[i]))
		for _, on := range row {
			if on {
				record = append(record, "1")
			} else {
				record = append(record, "0")
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
