package door

import "context"

// RemoteMutex is a process-wide lock serializing actuation pulses across
// every door remote sharing a radio frequency. A single-door deployment
// makes the mutex functionally a no-op, but the contract stays independent
// of door count: construct one RemoteMutex per process and hand it to every
// DoorRemote regardless of how many doors are configured.
type RemoteMutex struct {
	ch chan struct{}
}

// NewRemoteMutex returns an unlocked RemoteMutex.
func NewRemoteMutex() *RemoteMutex {
	m := &RemoteMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

// RemoteGuard represents exclusive ownership of the remote mutex. Release
// it with Unlock once the actuation pulse completes.
type RemoteGuard struct {
	ch chan struct{}
}

// Lock acquires the mutex, blocking until it is available or ctx is
// cancelled. Fairness across waiters is not guaranteed.
func (m *RemoteMutex) Lock(ctx context.Context) (RemoteGuard, error) {
	select {
	case <-m.ch:
		return RemoteGuard{ch: m.ch}, nil
	case <-ctx.Done():
		return RemoteGuard{}, ctx.Err()
	}
}

// Unlock releases the mutex. Safe to call exactly once per successful Lock.
func (g RemoteGuard) Unlock() {
	g.ch <- struct{}{}
}
