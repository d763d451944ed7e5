package script

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeClosed is returned when loading through a closed runtime.
	ErrRuntimeClosed = errors.New("script: runtime closed")

	// ErrInvalidRule is returned when a rule table is malformed.
	ErrInvalidRule = errors.New("script: invalid rule")
)

// ScriptError reports a failure while executing a rule file.
type ScriptError struct {
	File string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s: %v", e.File, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
