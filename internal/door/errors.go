package door

import "errors"

// Sentinel errors returned by the door state machine and its collaborators.
//
// Callers should use errors.Is to check for these, e.g.:
//
//	if errors.Is(err, door.ErrInitializationTimeout) {
//	    // restart the door task after a back-off
//	}
var (
	// ErrInitializationTimeout is returned when no sensor reading arrives
	// within the configured initialization window.
	ErrInitializationTimeout = errors.New("door: initialization timeout waiting for first sensor reading")

	// ErrAttemptsExhausted is returned by ConfirmedTravel.Reattempt when the
	// configured maximum attempt count has already been reached. It is not
	// a fatal error: the state machine treats it as a signal to enter a
	// stuck state, not to terminate.
	ErrAttemptsExhausted = errors.New("door: travel attempts exhausted")

	// ErrPublishFailed is returned when a state or stuck publication fails.
	// It is fatal: the door task terminates and the supervisor restarts it.
	ErrPublishFailed = errors.New("door: publish failed")

	// ErrRemoteFault is returned when the GPIO line backing a remote fails
	// to actuate. It is fatal to the door task.
	ErrRemoteFault = errors.New("door: remote actuation fault")

	// ErrTravelling is returned by GotoTargetState when called while the
	// door is already in a travelling state. Callers must check
	// IsTravelling() first; this error indicates a caller bug.
	ErrTravelling = errors.New("door: goto_target_state called while travelling")
)
