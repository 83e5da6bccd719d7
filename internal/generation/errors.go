package generation

import (
	"errors"
	"fmt"
)

// ErrInFlight is returned when a slot already has an outstanding request.
// No external call is issued.
var ErrInFlight = errors.New("generation already in flight for this slot")

// Pillar lookup failures.
var (
	ErrUnknownPillar    = errors.New("unknown pillar")
	ErrNotContentPillar = errors.New("pillar does not take insights")
)

// GenerationError reports a failed external generation call. Prior draft
// values are left untouched by callers that receive it.
type GenerationError struct {
	Op    string
	Slot  string
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed for %s: %v", e.Op, e.Slot, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
