package service

import "errors"

// Failure taxonomy of the attempt flow. Handlers map these onto response
// codes; nothing here is swallowed silently.
var (
	// ErrAttemptNotFound means no live attempt is registered for the test ID.
	ErrAttemptNotFound = errors.New("attempt not found")

	// ErrLoadFailed is fatal to attempt start: any upstream fetch failure
	// aborts the whole load and no partial attempt is entered.
	ErrLoadFailed = errors.New("attempt load failed")

	// ErrSaveFailed is recoverable: the answer stays in the local store and
	// mirror, and the user retries by navigating again (or submitting).
	ErrSaveFailed = errors.New("answer save failed")

	// ErrResultFailed is blocking: the attempt cannot reach its terminal
	// state until a final-result call succeeds, so the client must retry.
	ErrResultFailed = errors.New("final result computation failed")

	// ErrResultPending means the final result has not been obtained yet
	// (attempt still live, or a completion is in flight).
	ErrResultPending = errors.New("final result not yet available")
)
