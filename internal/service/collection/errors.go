package collection

import (
	"errors"
	"fmt"
)

// Façade-level errors. Not-found conditions surface as the store
// package's sentinel errors; the ones here cover bad input and illegal
// state transitions.
var (
	// ErrInvalidArgument is returned for malformed input: an unparseable
	// due-date spec, an out-of-range flag, a field name the notetype
	// does not declare, an unknown rating.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when an action is illegal for the
	// card's current state, e.g. answering a suspended card.
	ErrInvalidState = errors.New("invalid card state for operation")

	// ErrInvalidFlag is the flag-range variant of ErrInvalidArgument.
	ErrInvalidFlag = fmt.Errorf("%w: flag out of range", ErrInvalidArgument)
)
