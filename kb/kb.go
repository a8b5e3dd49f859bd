package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kenokrieger/lectron/core"
	"github.com/kenokrieger/lectron/model"
)

var (
	ErrPathwayExists   = errors.New("pathway already registered")
	ErrPathwayNotFound = errors.New("pathway not found")
	ErrPathwayBadInput = errors.New("invalid pathway definition")
)

// Library is an in-memory, thread-safe store of named pathway definitions.
// Definitions are data only; Build instantiates a fresh board from one, so
// the same pathway can be simulated many times with independent state.
type Library struct {
	mu       sync.RWMutex
	pathways map[string]*model.PathwayDefinition
}

// NewLibrary constructs an empty library.
func NewLibrary() *Library {
	return &Library{
		pathways: make(map[string]*model.PathwayDefinition),
	}
}

// Register stores a pathway definition under its name. It returns an
// error for nil or unnamed definitions and when the name is taken.
func (l *Library) Register(def *model.PathwayDefinition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("%w: nil or unnamed", ErrPathwayBadInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.pathways[def.Name]; exists {
		return fmt.Errorf("%w: %q", ErrPathwayExists, def.Name)
	}
	l.pathways[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (l *Library) Get(name string) (*model.PathwayDefinition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	def, ok := l.pathways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPathwayNotFound, name)
	}
	return def, nil
}

// Pathways returns the registered pathway names in sorted order.
func (l *Library) Pathways() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.pathways))
	for name := range l.pathways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates a new board from the named pathway: blocks in
// definition order, connections wired by label, and initially-on blocks
// forced to full voltage. Connections referencing unknown labels surface
// the board's lookup error.
func (l *Library) Build(name string) (*core.Board, error) {
	def, err := l.Get(name)
	if err != nil {
		return nil, err
	}

	board := core.NewBoardWithParams(def.Params)
	for _, blockDef := range def.Blocks {
		b := core.NewBlock(blockDef.Label)
		b.SetHysteresis(blockDef.Hysteresis)
		b.SetThreshold(blockDef.Threshold)
		b.SetTimeConstant(blockDef.TimeConstant)
		board.AddBlock(b)
		if blockDef.InitiallyOn {
			b.TurnOn(def.Params)
		}
	}
	for _, conn := range def.Connections {
		if err := board.ConnectLabels(conn.Source, conn.Target, conn.Weight); err != nil {
			return nil, fmt.Errorf("build %q: %w", name, err)
		}
	}
	return board, nil
}
