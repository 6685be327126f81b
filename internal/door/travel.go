package door

import "time"

// travel is the common contract shared by ConfirmedTravel and AssumedTravel:
// both expose a pollable expiry so the state machine's select loop can race
// them alongside detector and command events without knowing which kind of
// travel the current state carries.
type travel interface {
	// Expiry returns a channel that receives once the travel's timer fires.
	Expiry() <-chan time.Time

	// Stop cancels the underlying timer. Safe to call more than once.
	Stop()
}

// ConfirmedTravel represents an in-flight travel whose completion is
// confirmed by a sensor event, with a timer enforcing a bounded number of
// reattempts when the sensor never arrives. Used by AttemptingOpen and
// Closing, the two travel states with a sensed endpoint.
type ConfirmedTravel struct {
	timer       *time.Timer
	duration    time.Duration
	attempt     int
	maxAttempts int
}

// NewConfirmedTravel starts a ConfirmedTravel with its first attempt timer
// already running.
func NewConfirmedTravel(duration time.Duration, maxAttempts int) *ConfirmedTravel {
	return &ConfirmedTravel{
		timer:       time.NewTimer(duration),
		duration:    duration,
		attempt:     1,
		maxAttempts: maxAttempts,
	}
}

// Expiry returns the current attempt's expiry channel.
func (t *ConfirmedTravel) Expiry() <-chan time.Time {
	return t.timer.C
}

// Attempt returns the 1-indexed count of attempts made so far.
func (t *ConfirmedTravel) Attempt() int {
	return t.attempt
}

// MaxAttempts returns the configured attempt bound.
func (t *ConfirmedTravel) MaxAttempts() int {
	return t.maxAttempts
}

// Reattempt is called when the timer fires without the expected sensor
// event. If attempts remain, it resets the timer for another duration and
// increments the attempt counter. If the bound has been reached, it returns
// ErrAttemptsExhausted and leaves the timer stopped.
func (t *ConfirmedTravel) Reattempt() error {
	if t.attempt >= t.maxAttempts {
		return ErrAttemptsExhausted
	}
	t.attempt++
	t.timer.Reset(t.duration)
	return nil
}

// Stop cancels the timer, draining a pending fire if necessary.
func (t *ConfirmedTravel) Stop() {
	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}
}

// AssumedTravel represents an in-flight travel whose completion can only be
// declared by a timer, because no sensor exists at the far endpoint. Used
// by Opening: once the sensor has confirmed the door left Closed, nothing
// can confirm it has finished reaching Open, so the assumed travel duration
// alone decides when the door is considered open.
type AssumedTravel struct {
	timer *time.Timer
}

// NewAssumedTravel starts an AssumedTravel with its timer running.
func NewAssumedTravel(duration time.Duration) *AssumedTravel {
	return &AssumedTravel{timer: time.NewTimer(duration)}
}

// Expiry returns the travel's expiry channel.
func (t *AssumedTravel) Expiry() <-chan time.Time {
	return t.timer.C
}

// Stop cancels the timer, draining a pending fire if necessary.
func (t *AssumedTravel) Stop() {
	if !t.timer.Stop() {
		select {
		case <-t.timer.C:
		default:
		}
	}
}
