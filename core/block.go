package core

import "github.com/kenokrieger/lectron/model"

// Block is the theoretical counterpart to the physical gene block of the
// lectron kit: an RC charging circuit feeding a hysteretic comparator.
// While the ingoing signal meets the threshold the condensator charges
// towards the supply voltage; otherwise it discharges towards zero. The
// comparator latches, so a block that has turned active stays active until
// its voltage falls below the lower edge of the hysteresis band.
//
// Blocks carry no board reference; coupling between blocks happens
// exclusively through a Board's connection matrix.
type Block struct {
	hysteresis   float64
	threshold    int
	timeConstant float64
	label        string

	voltage float64
	active  bool
}

// NewBlock returns a block with the reference kit configuration:
// hysteresis 0.8, threshold 2 and a time constant of 4 s. The label may be
// empty; unlabelled blocks are simply excluded from board label lookup.
func NewBlock(label string) *Block {
	return &Block{
		hysteresis:   0.8,
		threshold:    2,
		timeConstant: 4.0,
		label:        label,
	}
}

// SetHysteresis sets the comparator band fraction. The activation and
// deactivation voltages sit at MaxVoltage/2 ± hysteresis·MaxVoltage/2.
// Values outside [0, 1] are stored as-is and reshape the band accordingly.
func (b *Block) SetHysteresis(hysteresis float64) { b.hysteresis = hysteresis }

// Hysteresis returns the comparator band fraction.
func (b *Block) Hysteresis() float64 { return b.hysteresis }

// SetThreshold sets the minimum ingoing signal needed to charge. No
// validation is applied; a non-positive threshold makes the block charge
// even without active inputs.
func (b *Block) SetThreshold(threshold int) { b.threshold = threshold }

// Threshold returns the activation threshold.
func (b *Block) Threshold() int { return b.threshold }

// SetTimeConstant sets the charge/discharge rate divisor in seconds.
func (b *Block) SetTimeConstant(timeConstant float64) { b.timeConstant = timeConstant }

// TimeConstant returns the charge/discharge rate divisor.
func (b *Block) TimeConstant() float64 { return b.timeConstant }

// SetLabel replaces the block's label. Relabelling a block that is already
// on a board does not update the board's label index.
func (b *Block) SetLabel(label string) { b.label = label }

// Label returns the block's label, which may be empty.
func (b *Block) Label() string { return b.label }

// Voltage returns the current condensator voltage. Read-only.
func (b *Block) Voltage() float64 { return b.voltage }

// Active evaluates the hysteretic comparator and latches the result; it is
// a Schmitt trigger, not a pure read. A rising voltage must exceed
// mid+band to activate, and once active the block stays active until the
// voltage drops to mid-band or below (mid = MaxVoltage/2,
// band = hysteresis·mid). Repeated calls without an intervening Update,
// TurnOn or TurnOff return the same value.
func (b *Block) Active(p model.Params) bool {
	mid := p.MaxVoltage / 2
	band := b.hysteresis * mid
	if b.active && b.voltage > mid-band {
		return true
	}
	if !b.active && b.voltage > mid+band {
		b.active = true
		return true
	}
	b.active = false
	return false
}

// TurnOn forces the condensator to the supply voltage. The comparator
// latch is untouched; it resolves on the next Active call.
func (b *Block) TurnOn(p model.Params) { b.voltage = p.MaxVoltage }

// TurnOff forces the condensator to zero volts.
func (b *Block) TurnOff() { b.voltage = 0.0 }

// Update advances the block by one simulation step: charge while the
// ingoing signal meets the threshold, discharge otherwise. The integration
// is a fixed-step explicit Euler approximation of the RC circuit.
func (b *Block) Update(signal float64, p model.Params) {
	if signal >= float64(b.threshold) {
		b.charge(p)
	} else {
		b.discharge(p)
	}
}

func (b *Block) charge(p model.Params) {
	b.voltage += (p.MaxVoltage - b.voltage) / b.timeConstant * p.DeltaT
}

func (b *Block) discharge(p model.Params) {
	b.voltage -= b.voltage / b.timeConstant * p.DeltaT
}
