package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kenokrieger/lectron/model"
)

// internal JSON shapes - kept unexported so the file format can evolve
// independently of the model types.
type pathwayJSON struct {
	Name        string           `json:"name"`
	Params      *paramsJSON      `json:"params"`
	Blocks      []blockJSON      `json:"blocks"`
	Connections []connectionJSON `json:"connections"`
	Stimulus    *stimulusJSON    `json:"stimulus"`
}

type paramsJSON struct {
	MaxVoltage *float64 `json:"max_voltage"`
	DeltaT     *float64 `json:"delta_t"`
}

type blockJSON struct {
	Label        string   `json:"label"`
	Hysteresis   *float64 `json:"hysteresis"`    // optional; defaults to 0.8
	Threshold    *int     `json:"threshold"`     // optional; defaults to 2
	TimeConstant *float64 `json:"time_constant"` // optional; defaults to 4.0
	InitiallyOn  bool     `json:"initially_on"`
}

type connectionJSON struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight *int   `json:"weight"` // optional; defaults to exciting (+1)
}

type stimulusJSON struct {
	Label string `json:"label"`
	Steps int    `json:"steps"`
}

// LoadPathway reads a pathway definition from JSON. It fails only on JSON
// and structural errors (a block without a label cannot be referenced by
// any connection, so labels are mandatory here); semantic problems such as
// a connection naming an unknown block surface when the definition is
// built into a board.
func LoadPathway(r io.Reader) (*model.PathwayDefinition, error) {
	var payload pathwayJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadPathway: decode failed: %w", err)
	}

	def := &model.PathwayDefinition{
		Name:   payload.Name,
		Params: model.DefaultParams(),
	}
	if payload.Params != nil {
		if payload.Params.MaxVoltage != nil {
			def.Params.MaxVoltage = *payload.Params.MaxVoltage
		}
		if payload.Params.DeltaT != nil {
			def.Params.DeltaT = *payload.Params.DeltaT
		}
	}

	seen := make(map[string]bool, len(payload.Blocks))
	for _, jsBlock := range payload.Blocks {
		if jsBlock.Label == "" {
			return nil, fmt.Errorf("LoadPathway: block with empty label")
		}
		if seen[jsBlock.Label] {
			return nil, fmt.Errorf("LoadPathway: duplicate block label %q", jsBlock.Label)
		}
		seen[jsBlock.Label] = true

		blockDef := model.BlockDefinition{
			Label:        jsBlock.Label,
			Hysteresis:   0.8,
			Threshold:    2,
			TimeConstant: 4.0,
			InitiallyOn:  jsBlock.InitiallyOn,
		}
		if jsBlock.Hysteresis != nil {
			blockDef.Hysteresis = *jsBlock.Hysteresis
		}
		if jsBlock.Threshold != nil {
			blockDef.Threshold = *jsBlock.Threshold
		}
		if jsBlock.TimeConstant != nil {
			blockDef.TimeConstant = *jsBlock.TimeConstant
		}
		def.Blocks = append(def.Blocks, blockDef)
	}

	for i, jsConn := range payload.Connections {
		if jsConn.Source == "" || jsConn.Target == "" {
			return nil, fmt.Errorf("LoadPathway: connection %d with empty endpoint", i)
		}
		weight := model.ConnectionExciting
		if jsConn.Weight != nil {
			weight = *jsConn.Weight
		}
		def.Connections = append(def.Connections, model.ConnectionDefinition{
			Source: jsConn.Source,
			Target: jsConn.Target,
			Weight: weight,
		})
	}

	if payload.Stimulus != nil {
		if payload.Stimulus.Label == "" {
			return nil, fmt.Errorf("LoadPathway: stimulus with empty label")
		}
		def.Stimulus = &model.Stimulus{
			Label: payload.Stimulus.Label,
			Steps: payload.Stimulus.Steps,
		}
	}

	return def, nil
}
