package flow

import "errors"

// Sentinel errors for the flow service layer.
var (
	ErrNotFound     = errors.New("flow not found")
	ErrStepNotFound = errors.New("flow step not found")
)
