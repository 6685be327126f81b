package door

import (
	"context"
	"fmt"
	"time"
)

// Publisher is the narrow slice of the MQTT client the door state machine
// needs to emit state and stuck publications.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the narrow logging contract the door state machine accepts,
// mirroring the optional-logger pattern used by the MQTT client so tests
// can run with no logger at all.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config carries the door state machine's (C4) tunables, independent of
// how they were loaded.
type Config struct {
	ID string

	CommandTopic string
	StateTopic   string
	StuckTopic   string

	QoS byte

	InitialTargetState *TargetState

	TravelDuration           time.Duration
	MaxAttempts              int
	MaxRemoteLatencyDuration time.Duration

	InitializationTimeout time.Duration
}

// Door is one garage door's state machine: a single cooperative select-loop
// fusing detector events, travel-timer expiries, and buffered commands into
// lifecycle transitions (C4).
type Door struct {
	cfg Config

	sub       Subscriber
	pub       Publisher
	detector  Detector
	remote    *DoorRemote
	logger    Logger

	current    State
	nextTarget *TargetState
	commands   chan TargetState
}

// NewDoor constructs a Door. logger may be nil, in which case log output is
// discarded.
func NewDoor(cfg Config, sub Subscriber, pub Publisher, detector Detector, remote *DoorRemote, logger Logger) *Door {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Door{
		cfg:      cfg,
		sub:      sub,
		pub:      pub,
		detector: detector,
		remote:   remote,
		logger:   logger,
		commands: make(chan TargetState, 1),
	}
}

// Run subscribes to the command topic, waits for the detector's first
// reading, publishes the resulting initial state, applies an optional
// configured initial target, and then runs the select-loop until ctx is
// cancelled or a fatal error occurs.
//
// Run returns ErrInitializationTimeout if no sensor reading arrives in
// time, or any fatal publish/remote error encountered during the loop.
// A cancelled ctx returns ctx.Err(). Both are meant to be handled by an
// outer process supervisor that restarts the door task after a back-off.
func (d *Door) Run(ctx context.Context) error {
	if err := d.subscribeCommands(); err != nil {
		return err
	}

	initTimeout := d.cfg.InitializationTimeout
	if initTimeout <= 0 {
		initTimeout = initializationTimeout
	}
	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	initial, events, err := d.detector.Listen(initCtx)
	cancel()
	if err != nil {
		return err
	}

	d.current = FromDetectedState(initial)
	if err := d.publishState(); err != nil {
		return err
	}

	if d.cfg.InitialTargetState != nil {
		if err := d.gotoTargetState(ctx, *d.cfg.InitialTargetState); err != nil {
			return err
		}
	}

	for {
		if d.nextTarget != nil && !d.current.IsTravelling() {
			target := *d.nextTarget
			d.nextTarget = nil
			if err := d.gotoTargetState(ctx, target); err != nil {
				return err
			}
		}

		select {
		case detected := <-events:
			if err := d.handleDetected(ctx, detected); err != nil {
				return err
			}

		case <-d.current.Expiry():
			if err := d.handleExpiry(ctx); err != nil {
				return err
			}

		case target := <-d.commands:
			t := target
			d.nextTarget = &t

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// subscribeCommands subscribes to the command topic, parsing ASCII "OPEN"
// or "CLOSED" payloads and overwriting the single-slot command buffer.
// Unparseable payloads are silently ignored, per §6's command topic
// contract.
func (d *Door) subscribeCommands() error {
	return d.sub.Subscribe(d.cfg.CommandTopic, d.cfg.QoS, func(_ string, payload []byte) error {
		target, ok := ParseTargetState(string(payload))
		if !ok {
			return nil
		}

		select {
		case d.commands <- target:
		default:
			select {
			case <-d.commands:
			default:
			}
			d.commands <- target
		}
		return nil
	})
}

// gotoTargetState implements §4.4.2. The caller must ensure the door is not
// travelling; ErrTravelling signals a caller bug, not a recoverable
// condition.
func (d *Door) gotoTargetState(ctx context.Context, target TargetState) error {
	if d.current.IsTravelling() {
		return ErrTravelling
	}

	if end, ok := d.current.EndState(); ok && end == target {
		return nil
	}

	var next State
	switch target {
	case TargetClosed:
		next = NewClosing(NewConfirmedTravel(d.cfg.TravelDuration, d.cfg.MaxAttempts))
	case TargetOpen:
		next = NewAttemptingOpen(NewConfirmedTravel(d.cfg.MaxRemoteLatencyDuration, d.cfg.MaxAttempts))
	}

	if err := d.setState(next); err != nil {
		return err
	}

	if err := d.remote.Trigger(ctx); err != nil {
		return fmt.Errorf("door %s: triggering remote: %w", d.cfg.ID, err)
	}

	return nil
}

// handleDetected applies the detector-event transition table of §4.4.3.
func (d *Door) handleDetected(ctx context.Context, detected DetectedState) error {
	switch d.current.Kind {
	case KindClosed, KindAttemptingOpen:
		switch detected {
		case DetectedOpen:
			return d.setState(NewOpening(NewAssumedTravel(d.cfg.TravelDuration)))
		case DetectedStuck:
			return d.setState(NewStuckClosed())
		}

	case KindOpening, KindOpen:
		switch detected {
		case DetectedClosed:
			return d.setState(NewClosed())
		case DetectedStuck:
			return d.setState(NewStuckOpen())
		}

	case KindClosing:
		switch detected {
		case DetectedClosed:
			return d.setState(NewClosed())
		case DetectedOpen:
			return d.setState(NewOpening(NewAssumedTravel(d.cfg.TravelDuration)))
		case DetectedStuck:
			return d.setState(NewStuckOpen())
		}

	case KindStuckClosed:
		if detected == DetectedOpen {
			return d.setState(NewOpening(NewAssumedTravel(d.cfg.TravelDuration)))
		}

	case KindStuckOpen:
		if detected == DetectedClosed {
			return d.setState(NewClosed())
		}
	}

	_ = ctx // no remote action needed on a no-op detector transition
	return nil
}

// handleExpiry applies the timer-expiry transition table of §4.4.3,
// including the observed Closing-exhaustion inconsistency, preserved
// unchanged: it is flagged as an open question, not corrected.
func (d *Door) handleExpiry(ctx context.Context) error {
	switch d.current.Kind {
	case KindAttemptingOpen:
		travel, _ := d.current.ConfirmedTravel()
		if err := travel.Reattempt(); err != nil {
			return d.setState(NewStuckClosed())
		}
		return d.retrigger(ctx)

	case KindClosing:
		travel, _ := d.current.ConfirmedTravel()
		if err := travel.Reattempt(); err != nil {
			// Exhaustion here lands on StuckClosed rather than StuckOpen,
			// matching both upstream revisions unchanged.
			return d.setState(NewStuckClosed())
		}
		return d.retrigger(ctx)

	case KindOpening:
		return d.setState(NewOpen())

	default:
		// Stable states never select on a live expiry channel.
		return nil
	}
}

// retrigger re-presses the remote for a renewed travel attempt without
// changing the published state (the state's Kind and topic string are
// unchanged; only the embedded travel's attempt counter advanced).
func (d *Door) retrigger(ctx context.Context) error {
	if err := d.remote.Trigger(ctx); err != nil {
		return fmt.Errorf("door %s: re-triggering remote: %w", d.cfg.ID, err)
	}
	return nil
}

// setState replaces the current state, stopping the old state's travel
// timer if any, and publishes both the state and stuck topics. Every call
// publishes unconditionally, even if the new state is identical to the
// old one — there is no deduplication.
func (d *Door) setState(next State) error {
	d.current.StopTravel()
	d.current = next
	return d.publishState()
}

func (d *Door) publishState() error {
	if err := d.pub.Publish(d.cfg.StateTopic, []byte(d.current.TopicString()), d.cfg.QoS, true); err != nil {
		return fmt.Errorf("door %s: %w: %w", d.cfg.ID, ErrPublishFailed, err)
	}
	if d.cfg.StuckTopic != "" {
		if err := d.pub.Publish(d.cfg.StuckTopic, []byte(d.current.StuckString()), d.cfg.QoS, false); err != nil {
			return fmt.Errorf("door %s: %w: %w", d.cfg.ID, ErrPublishFailed, err)
		}
	}
	return nil
}

// Current returns the door's current state. Safe to call only from the
// goroutine running Run, or after Run has returned.
func (d *Door) Current() State {
	return d.current
}
