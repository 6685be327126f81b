package door

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/garagedoor-core/internal/hardware/gpio"
)

// DoorRemote owns one boolean GPIO output line and emulates a physical
// garage-door remote button: a press is a high pulse of pressedDuration
// followed by a low guard interval of waitDuration.
//
// Concurrent callers are serialized by the shared RemoteMutex (C5) rather
// than by DoorRemote itself, since the mutex must also serialize across
// multiple DoorRemote instances sharing the same radio frequency.
type DoorRemote struct {
	line            gpio.Line
	mutex           *RemoteMutex
	pressedDuration time.Duration
	waitDuration    time.Duration
}

// NewDoorRemote returns a DoorRemote driving line, guarded by mutex. The
// line is assumed to already be initialized low, matching every gpio.Line
// implementation's construction contract.
func NewDoorRemote(line gpio.Line, mutex *RemoteMutex, pressedDuration, waitDuration time.Duration) *DoorRemote {
	return &DoorRemote{
		line:            line,
		mutex:           mutex,
		pressedDuration: pressedDuration,
		waitDuration:    waitDuration,
	}
}

// Trigger acquires the remote mutex, pulses the line high for
// pressedDuration, drops it low, then holds the mutex for waitDuration
// before releasing it. A failed GPIO write does not retry — retry policy
// belongs to the door state machine (C4), not the remote.
func (r *DoorRemote) Trigger(ctx context.Context) error {
	guard, err := r.mutex.Lock(ctx)
	if err != nil {
		return fmt.Errorf("door: acquiring remote mutex: %w", err)
	}
	defer guard.Unlock()

	if err := r.line.SetHigh(); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteFault, err)
	}

	if err := sleep(ctx, r.pressedDuration); err != nil {
		r.line.SetLow()
		return err
	}

	if err := r.line.SetLow(); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteFault, err)
	}

	return sleep(ctx, r.waitDuration)
}

// sleep blocks for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
