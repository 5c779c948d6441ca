package footprint

import (
	"errors"
	"fmt"
)

var ErrSampleNotFound = errors.New("sample image not found")

// Pipeline stage names, indexed by layer number.
var StageNames = map[int]string{
	1: "Input Processing",
	2: "Entity Standardization",
	3: "Knowledge Retrieval",
	4: "Footprint Estimation",
	5: "Summary Generation",
}

// StageError aborts the pipeline at a given layer.
type StageError struct {
	Layer int
	Err   error
}

func NewStageError(layer int, err error) *StageError {
	return &StageError{Layer: layer, Err: err}
}

func (e *StageError) Stage() string {
	return fmt.Sprintf("Layer %d (%s)", e.Layer, StageNames[e.Layer])
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage(), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
