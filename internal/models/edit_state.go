package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EditStateVersion is the only schema version the pipeline understands.
const EditStateVersion = 1

type LayerType string

const (
	LayerTypeText  LayerType = "text"
	LayerTypeImage LayerType = "image"
	LayerTypeShape LayerType = "shape"
)

func (t LayerType) IsValid() bool {
	switch t {
	case LayerTypeText, LayerTypeImage, LayerTypeShape:
		return true
	}
	return false
}

// requiredLayerParams maps a layer type to the parameter a required layer
// of that type must carry.
var requiredLayerParams = map[LayerType]string{
	LayerTypeText:  "text",
	LayerTypeImage: "src",
	LayerTypeShape: "shape",
}

type TrimRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Layer is one overlay in an edit. Order inside EditState.Layers is z-order,
// later entries render on top.
type Layer struct {
	LayerKey string                 `json:"layerKey"`
	Type     LayerType              `json:"type"`
	Required bool                   `json:"required"`
	Params   map[string]interface{} `json:"params,omitempty"`
}

// EditState is the versioned snapshot of a video edit that drives rendering.
// It is immutable once attached to an export job.
type EditState struct {
	Version int        `json:"version"`
	Trim    *TrimRange `json:"trim,omitempty"`
	Layers  []Layer    `json:"layers"`
}

// ValidateEditState checks the whole document and accumulates every problem
// it finds instead of stopping at the first one. An empty slice means valid.
// sourceDuration is the source video duration in seconds; pass 0 when unknown
// to skip the upper trim bound check.
func ValidateEditState(state *EditState, sourceDuration float64) []string {
	if state == nil {
		return []string{"editState is required"}
	}
	var errs []string

	if state.Version != EditStateVersion {
		errs = append(errs, fmt.Sprintf("unsupported editState version %d, expected %d", state.Version, EditStateVersion))
	}

	if t := state.Trim; t != nil {
		if t.Start < 0 {
			errs = append(errs, fmt.Sprintf("trim start must not be negative, got %g", t.Start))
		}
		if t.End <= t.Start {
			errs = append(errs, fmt.Sprintf("trim end (%g) must be greater than trim start (%g)", t.End, t.Start))
		}
		if sourceDuration > 0 && t.End > sourceDuration {
			errs = append(errs, fmt.Sprintf("trim end (%g) exceeds source duration (%g)", t.End, sourceDuration))
		}
	}

	seen := make(map[string]bool, len(state.Layers))
	for i, layer := range state.Layers {
		if layer.LayerKey == "" {
			errs = append(errs, fmt.Sprintf("layer %d: layerKey is required", i))
		} else if seen[layer.LayerKey] {
			errs = append(errs, fmt.Sprintf("layer %d: duplicate layerKey %q", i, layer.LayerKey))
		} else {
			seen[layer.LayerKey] = true
		}
		if !layer.Type.IsValid() {
			errs = append(errs, fmt.Sprintf("layer %d: unknown layer type %q", i, layer.Type))
			continue
		}
		if layer.Required {
			param := requiredLayerParams[layer.Type]
			if _, ok := layer.Params[param]; !ok {
				errs = append(errs, fmt.Sprintf("layer %d (%s): required layer is missing %q param", i, layer.LayerKey, param))
			}
		}
	}
	return errs
}

func (e EditState) Value() (driver.Value, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edit state: %w", err)
	}
	return b, nil
}

func (e *EditState) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported edit state column type %T", src)
	}
}
