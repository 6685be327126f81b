// Package supervisor restarts an in-process task after it fails, with a
// fixed delay and a bounded attempt count.
//
// Adapted from the subprocess-supervision shape in
// internal/process.Manager — restart-on-failure, a configurable delay, and
// MaxRestartAttempts — generalized from "supervise an *exec.Cmd" to
// "supervise a func(ctx context.Context) error", since the door state
// machine and the rest of this repository's long-running work are
// in-process goroutines, not subprocesses.
package supervisor
