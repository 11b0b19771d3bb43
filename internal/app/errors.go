package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrMalformedReward marks a reward descriptor the engine cannot
	// dispatch: unknown kind or missing identifier. Distinct from the
	// already-granted outcome, which is a success.
	ErrMalformedReward = errors.New("malformed reward")
)
