package model

// Params holds the simulation-wide electrical constants shared by every
// block on a board. They were properties of the physical kit (a 9 V supply
// and a 1 ms sampling step) and are deliberately not per-block: the board
// owns one Params value and threads it through every block operation, so
// independent boards can run with different constants side by side.
type Params struct {
	// MaxVoltage is the supply voltage the condensator charges towards,
	// in volts.
	MaxVoltage float64 `json:"max_voltage"`
	// DeltaT is the duration of one discrete simulation step, in seconds.
	DeltaT float64 `json:"delta_t"`
}

// DefaultParams returns the constants of the reference kit: a 9 V supply
// sampled at 1 ms per step.
func DefaultParams() Params {
	return Params{
		MaxVoltage: 9.0,
		DeltaT:     1e-3,
	}
}
