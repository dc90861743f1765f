package game

import "errors"

var (
	// ErrIllegalAction indicates the resolved move is not legal for the
	// current hand state. Compound-token fallback makes this unreachable
	// for valid strategy tables; hitting it is fatal to the run.
	ErrIllegalAction = errors.New("illegal action for current hand state")

	// ErrSplitDepth indicates a split was attempted past the hand cap.
	ErrSplitDepth = errors.New("split exceeds maximum hand count")
)
