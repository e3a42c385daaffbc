package imports

import (
	"errors"
	"fmt"
)

// Stage identifies where an import invocation is in its lifecycle.
// Progress is strictly linear; there is no aborted terminal state; a
// degenerate input (zero valid rows) still reaches StageDone with an
// all-failure BatchResult.
type Stage string

// Import lifecycle stages, in order.
const (
	StageIdle         Stage = "IDLE"
	StageParsed       Stage = "PARSED"
	StageResolved     Stage = "RESOLVED"
	StageValidated    Stage = "VALIDATED"
	StageDeduplicated Stage = "DEDUPLICATED"
	StageCommitting   Stage = "COMMITTING"
	StageDone         Stage = "DONE"
)

// Sentinel errors for stage transition validation.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidStage indicates an unknown stage value.
	ErrInvalidStage = errors.New("invalid import stage")

	// ErrInvalidStageTransition indicates a transition that skips or reverses
	// the linear stage order.
	ErrInvalidStageTransition = errors.New("invalid stage transition")
)

// stageOrder fixes the linear progression of an import invocation.
var stageOrder = map[Stage]Stage{
	StageIdle:         StageParsed,
	StageParsed:       StageResolved,
	StageResolved:     StageValidated,
	StageValidated:    StageDeduplicated,
	StageDeduplicated: StageCommitting,
	StageCommitting:   StageDone,
}

// IsTerminal reports whether the stage is the terminal StageDone.
func (s Stage) IsTerminal() bool {
	return s == StageDone
}

// Next returns the stage that follows s in the linear lifecycle.
func (s Stage) Next() (Stage, error) {
	next, ok := stageOrder[s]
	if !ok {
		if s == StageDone {
			return "", fmt.Errorf("%w: DONE is terminal", ErrInvalidStageTransition)
		}

		return "", fmt.Errorf("%w: %q", ErrInvalidStage, string(s))
	}

	return next, nil
}

// ValidateStageTransition checks that from → to follows the linear lifecycle.
//
// Valid transitions:
//   - IDLE → PARSED → RESOLVED → VALIDATED → DEDUPLICATED → COMMITTING → DONE
//
// Invalid transitions:
//   - Any skip (e.g. PARSED → VALIDATED)
//   - Any reversal (e.g. COMMITTING → PARSED)
//   - Anything out of DONE (terminal)
func ValidateStageTransition(from, to Stage) error {
	next, err := from.Next()
	if err != nil {
		return err
	}

	if to != next {
		return fmt.Errorf("%w: %s → %s", ErrInvalidStageTransition, from, to)
	}

	return nil
}
