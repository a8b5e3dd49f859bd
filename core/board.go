package core

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kenokrieger/lectron/model"
)

var (
	// ErrBlockNotFound is returned when a label does not resolve to any
	// block on the board.
	ErrBlockNotFound = errors.New("could not locate block with label")
	// ErrNotOnBoard is returned when a block reference is not part of the
	// board's block collection.
	ErrNotOnBoard = errors.New("block is not on the board")
	// ErrShapeMismatch is returned by Advance when the connection matrix
	// dimensions disagree with the block count. This is a caller contract
	// violation (typically a bad SetConnections), not a recoverable
	// runtime condition.
	ErrShapeMismatch = errors.New("connection matrix shape does not match block count")
)

// Board is the theoretical equivalent of the physical lectron board: it
// owns an ordered set of blocks, the signed connection matrix between them
// and the simulation constants, and it advances all blocks synchronously.
//
// A block's position in the insertion order is also its row/column index in
// the connection matrix; removing a block renumbers every higher index.
// The matrix is addressed [target, source]: row = receiver, column = sender.
type Board struct {
	params   model.Params
	blocks   []*Block
	labelled map[string]*Block
	conns    *mat.Dense // nil while the board is empty
}

// NewBoard returns an empty board using the reference kit constants.
func NewBoard() *Board {
	return NewBoardWithParams(model.DefaultParams())
}

// NewBoardWithParams returns an empty board with custom simulation
// constants. Boards with different constants are fully independent.
func NewBoardWithParams(p model.Params) *Board {
	return &Board{
		params:   p,
		labelled: make(map[string]*Block),
	}
}

// Params returns the board's simulation constants.
func (bd *Board) Params() model.Params { return bd.params }

// Size returns the number of blocks on the board.
func (bd *Board) Size() int { return len(bd.blocks) }

// AddBlock appends a block to the board and grows the connection matrix by
// one zero-filled row and column, preserving all existing entries. A block
// with a non-empty label is registered for label lookup.
func (bd *Board) AddBlock(b *Block) {
	n := len(bd.blocks)
	grown := mat.NewDense(n+1, n+1, nil)
	if bd.conns != nil {
		grown.Slice(0, n, 0, n).(*mat.Dense).Copy(bd.conns)
	}
	bd.blocks = append(bd.blocks, b)
	bd.conns = grown
	if label := b.Label(); label != "" {
		bd.labelled[label] = b
	}
}

// AddBlocks adds blocks in order. It is a plain sequence of AddBlock calls
// and is not atomic: a caller bailing out partway leaves earlier blocks
// added.
func (bd *Board) AddBlocks(blocks []*Block) {
	for _, b := range blocks {
		bd.AddBlock(b)
	}
}

// RemoveBlock removes a block and all its connections from the board. The
// block's row and column are dropped from the connection matrix, shifting
// every higher index down by one, and its label entry is unregistered.
func (bd *Board) RemoveBlock(b *Block) error {
	idx, err := bd.Index(b)
	if err != nil {
		return err
	}
	if label := b.Label(); label != "" && bd.labelled[label] == b {
		delete(bd.labelled, label)
	}
	bd.removeAt(idx)
	return nil
}

// RemoveBlockByLabel resolves a label and removes that block.
func (bd *Board) RemoveBlockByLabel(label string) error {
	b, err := bd.Block(label)
	if err != nil {
		return err
	}
	return bd.RemoveBlock(b)
}

func (bd *Board) removeAt(idx int) {
	n := len(bd.blocks)
	bd.blocks = append(bd.blocks[:idx], bd.blocks[idx+1:]...)
	if n-1 == 0 {
		bd.conns = nil
		return
	}
	shrunk := mat.NewDense(n-1, n-1, nil)
	for r := 0; r < n; r++ {
		if r == idx {
			continue
		}
		rr := r
		if r > idx {
			rr--
		}
		for c := 0; c < n; c++ {
			if c == idx {
				continue
			}
			cc := c
			if c > idx {
				cc--
			}
			shrunk.Set(rr, cc, bd.conns.At(r, c))
		}
	}
	bd.conns = shrunk
}

// checkShape verifies that the connection matrix is square with dimension
// equal to the block count. A nil matrix counts as 0x0.
func (bd *Board) checkShape() error {
	n := len(bd.blocks)
	rows, cols := 0, 0
	if bd.conns != nil {
		rows, cols = bd.conns.Dims()
	}
	if rows != n || cols != n {
		return fmt.Errorf("%w: matrix is %dx%d, board has %d blocks",
			ErrShapeMismatch, rows, cols, n)
	}
	return nil
}

// Block resolves a label to its block.
func (bd *Board) Block(label string) (*Block, error) {
	b, ok := bd.labelled[label]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrBlockNotFound, label)
	}
	return b, nil
}

// BlockAt returns the block at position i in insertion order. It panics on
// an out-of-range index, like any slice access.
func (bd *Board) BlockAt(i int) *Block { return bd.blocks[i] }

// Index returns a block's position in insertion order, which is also its
// row/column index in the connection matrix.
func (bd *Board) Index(b *Block) (int, error) {
	for i, candidate := range bd.blocks {
		if candidate == b {
			return i, nil
		}
	}
	if label := b.Label(); label != "" {
		return 0, fmt.Errorf("%w: %q", ErrNotOnBoard, label)
	}
	return 0, fmt.Errorf("%w", ErrNotOnBoard)
}

// Connect wires a directed connection from source to target with the given
// weight: +1 exciting, -1 inhibiting, 0 absent. Both blocks must already
// be on the board. A connection matrix that no longer matches the block
// count, e.g. after a bad SetConnections, surfaces as ErrShapeMismatch.
func (bd *Board) Connect(source, target *Block, weight int) error {
	srcIdx, err := bd.Index(source)
	if err != nil {
		return err
	}
	tgtIdx, err := bd.Index(target)
	if err != nil {
		return err
	}
	if err := bd.checkShape(); err != nil {
		return err
	}
	bd.conns.Set(tgtIdx, srcIdx, float64(weight))
	return nil
}

// ConnectLabels resolves both endpoints by label and wires them.
func (bd *Board) ConnectLabels(source, target string, weight int) error {
	src, err := bd.Block(source)
	if err != nil {
		return err
	}
	tgt, err := bd.Block(target)
	if err != nil {
		return err
	}
	return bd.Connect(src, tgt, weight)
}

// Disconnect removes the connection from source to target by overwriting
// it with a zero weight.
func (bd *Board) Disconnect(source, target *Block) error {
	return bd.Connect(source, target, model.ConnectionAbsent)
}

// DisconnectLabels resolves both endpoints by label and disconnects them.
func (bd *Board) DisconnectLabels(source, target string) error {
	return bd.ConnectLabels(source, target, model.ConnectionAbsent)
}

// Weight returns the connection weight from source to target.
func (bd *Board) Weight(source, target *Block) (int, error) {
	srcIdx, err := bd.Index(source)
	if err != nil {
		return 0, err
	}
	tgtIdx, err := bd.Index(target)
	if err != nil {
		return 0, err
	}
	if err := bd.checkShape(); err != nil {
		return 0, err
	}
	return int(bd.conns.At(tgtIdx, srcIdx)), nil
}

// SetConnections replaces the whole connection matrix. The caller is
// responsible for matching the matrix dimensions to the block count;
// mismatches surface as ErrShapeMismatch on the next Advance.
func (bd *Board) SetConnections(connections *mat.Dense) {
	bd.conns = connections
}

// Connections returns a copy of the connection matrix, or nil for an empty
// board. Mutating the copy does not affect the board.
func (bd *Board) Connections() *mat.Dense {
	if bd.conns == nil {
		return nil
	}
	return mat.DenseCopyOf(bd.conns)
}

// Blocks returns a snapshot copy of the block list in insertion order.
// Mutating the returned slice does not affect the board.
func (bd *Board) Blocks() []*Block {
	out := make([]*Block, len(bd.blocks))
	copy(out, bd.blocks)
	return out
}

// States evaluates every block's comparator in board order and returns the
// activities. Like Block.Active, this latches: it is an observation with a
// side effect, not a pure read.
func (bd *Board) States() []bool {
	states := make([]bool, len(bd.blocks))
	for i, b := range bd.blocks {
		states[i] = b.Active(bd.params)
	}
	return states
}

// Voltages returns every block's condensator voltage in board order.
// Read-only.
func (bd *Board) Voltages() []float64 {
	voltages := make([]float64, len(bd.blocks))
	for i, b := range bd.blocks {
		voltages[i] = b.Voltage()
	}
	return voltages
}

// Advance updates all blocks synchronously by one step. Every block's
// activation is sampled before any block's voltage changes, so all signals
// are computed from one consistent snapshot of the previous step rather
// than cascading through the update order. The per-block signal is the
// matrix-vector product of the signed connections with the 0/1 state
// vector, letting inhibiting inputs cancel exciting ones.
func (bd *Board) Advance() error {
	if err := bd.checkShape(); err != nil {
		return err
	}
	n := len(bd.blocks)
	if n == 0 {
		return nil
	}

	// Phase 1: snapshot all activations.
	state := mat.NewVecDense(n, nil)
	for i, b := range bd.blocks {
		if b.Active(bd.params) {
			state.SetVec(i, 1)
		}
	}

	// Phase 2: signal[target] = sum over sources of weight * state.
	var signal mat.VecDense
	signal.MulVec(bd.conns, state)

	// Phase 3: integrate. No block reads another's state here, so the
	// order is immaterial.
	for i, b := range bd.blocks {
		b.Update(signal.AtVec(i), bd.params)
	}
	return nil
}
