package husk

import "errors"

// Builder errors. All of them are terminal for the build in progress:
// the ring sequence cannot be repaired once a structural error is
// detected, the caller has to fix the input and start over.
var (
	// ErrUnknownBranchLabel is returned when a branch is entered
	// before any spoke declared it, or after it was already consumed.
	ErrUnknownBranchLabel = errors.New("unknown branch label")

	// ErrInvalidBranches is returned when a single face mixes points
	// of two different branch labels.
	ErrInvalidBranches = errors.New("invalid branches")

	// ErrInvalidRing is returned when a ring has too few resolved
	// points to stitch a band.
	ErrInvalidRing = errors.New("invalid ring")

	// ErrDisjointBranch is returned when the accumulated edges of a
	// branch do not form a single closed ring.
	ErrDisjointBranch = errors.New("branch edges do not form a single ring")
)
