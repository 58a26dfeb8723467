package walk

import "errors"

// Sentinel errors. Use errors.Is(err, walk.ErrNoSolution) to check.
var (
	ErrInvalidGraph = errors.New("walk: invalid graph")
	ErrUnreachable  = errors.New("walk: goal unreachable")
	ErrNoSolution   = errors.New("walk: no simultaneous solution")
	ErrNoCycles     = errors.New("walk: no cycles to synchronize")
	ErrOverflow     = errors.New("walk: combined period overflows int64")
	ErrStepBound    = errors.New("walk: no repeat within step bound")
)
