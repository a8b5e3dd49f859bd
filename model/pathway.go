package model

// Connection weights as wired on the physical board. Any integer is
// accepted by the matrix; these are the values with a biological reading.
const (
	ConnectionExciting   = 1
	ConnectionAbsent     = 0
	ConnectionInhibiting = -1
)

// BlockDefinition is the data-only description of one gene block inside a
// pathway. It mirrors the block's configuration surface; behaviour lives in
// core.Block.
type BlockDefinition struct {
	// Label identifies the block inside the pathway. Pathway definitions
	// require labels because connections reference their endpoints by label.
	Label string `json:"label"`
	// Hysteresis is the comparator band fraction in [0, 1].
	Hysteresis float64 `json:"hysteresis"`
	// Threshold is the minimum ingoing signal needed to charge.
	Threshold int `json:"threshold"`
	// TimeConstant is the charge/discharge rate divisor in seconds.
	TimeConstant float64 `json:"time_constant"`
	// InitiallyOn forces the block to full voltage when the board is built.
	InitiallyOn bool `json:"initially_on,omitempty"`
}

// ConnectionDefinition is one directed, signed link between two labelled
// blocks of a pathway.
type ConnectionDefinition struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Stimulus describes the start-up phase of a pathway run: one block is held
// at full voltage for a number of steps before measurements begin. The
// yeast cell-cycle network, for example, is primed with a constant CLN3
// supply for 3000 steps.
type Stimulus struct {
	Label string `json:"label"`
	Steps int    `json:"steps"`
}

// PathwayDefinition is the complete, board-independent description of a
// regulatory network: simulation constants, blocks, signed connections and
// an optional stimulus phase. Definitions are stored in a kb.Library and
// instantiated into core.Boards from there.
type PathwayDefinition struct {
	Name        string                 `json:"name"`
	Params      Params                 `json:"params"`
	Blocks      []BlockDefinition      `json:"blocks"`
	Connections []ConnectionDefinition `json:"connections"`
	Stimulus    *Stimulus              `json:"stimulus,omitempty"`
}
