package door

import "time"

// TargetState is the externally-requested endpoint for the door.
type TargetState int

const (
	TargetOpen TargetState = iota
	TargetClosed
)

// String renders the target for logging.
func (t TargetState) String() string {
	if t == TargetOpen {
		return "OPEN"
	}
	return "CLOSED"
}

// ParseTargetState parses a command payload. Only the literal ASCII
// payloads "OPEN" and "CLOSED" are recognised; anything else is silently
// ignored by the caller (ok is false).
func ParseTargetState(payload string) (target TargetState, ok bool) {
	switch payload {
	case "OPEN":
		return TargetOpen, true
	case "CLOSED":
		return TargetClosed, true
	default:
		return 0, false
	}
}

// DetectedState is what the door detector (C1) reports.
type DetectedState int

const (
	DetectedOpen DetectedState = iota
	DetectedClosed
	DetectedStuck
)

// String renders the detected state for logging.
func (d DetectedState) String() string {
	switch d {
	case DetectedOpen:
		return "open"
	case DetectedClosed:
		return "closed"
	default:
		return "stuck"
	}
}

// Kind identifies which of the seven State cases a State value holds.
type Kind int

const (
	KindClosed Kind = iota
	KindOpen
	KindStuckClosed
	KindStuckOpen
	KindAttemptingOpen
	KindOpening
	KindClosing
)

// String renders the kind for logging.
func (k Kind) String() string {
	switch k {
	case KindClosed:
		return "Closed"
	case KindOpen:
		return "Open"
	case KindStuckClosed:
		return "StuckClosed"
	case KindStuckOpen:
		return "StuckOpen"
	case KindAttemptingOpen:
		return "AttemptingOpen"
	case KindOpening:
		return "Opening"
	case KindClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// State is the door's lifecycle, modeled as a tagged union: Kind selects
// which case is live, and at most one of the two travel fields is non-nil,
// matching the case it belongs to. Go has no native sum type, so the
// invariant "at most one travel field populated, matching Kind" is
// maintained entirely by the constructors below — never build a State
// with a struct literal outside this file.
type State struct {
	Kind Kind

	// confirmed is non-nil only for AttemptingOpen and Closing.
	confirmed *ConfirmedTravel

	// assumed is non-nil only for Opening.
	assumed *AssumedTravel
}

// NewClosed returns the stable Closed state.
func NewClosed() State { return State{Kind: KindClosed} }

// NewOpen returns the stable Open state.
func NewOpen() State { return State{Kind: KindOpen} }

// NewStuckClosed returns the stable StuckClosed state.
func NewStuckClosed() State { return State{Kind: KindStuckClosed} }

// NewStuckOpen returns the stable StuckOpen state.
func NewStuckOpen() State { return State{Kind: KindStuckOpen} }

// NewAttemptingOpen returns the travelling AttemptingOpen state carrying t.
func NewAttemptingOpen(t *ConfirmedTravel) State {
	return State{Kind: KindAttemptingOpen, confirmed: t}
}

// NewOpening returns the travelling Opening state carrying t.
func NewOpening(t *AssumedTravel) State {
	return State{Kind: KindOpening, assumed: t}
}

// NewClosing returns the travelling Closing state carrying t.
func NewClosing(t *ConfirmedTravel) State {
	return State{Kind: KindClosing, confirmed: t}
}

// FromDetectedState coerces the detector's first reading into a State at
// boot. A Stuck reading is treated conservatively as Open, so that if the
// door is actually closed-but-stuck it will be commanded closed (rather
// than assumed already-closed and left alone).
func FromDetectedState(d DetectedState) State {
	switch d {
	case DetectedClosed:
		return NewClosed()
	default:
		return NewOpen()
	}
}

// IsTravelling reports whether the door is currently in motion.
func (s State) IsTravelling() bool {
	switch s.Kind {
	case KindAttemptingOpen, KindOpening, KindClosing:
		return true
	default:
		return false
	}
}

// ConfirmedTravel returns the embedded ConfirmedTravel and true if this
// state is AttemptingOpen or Closing.
func (s State) ConfirmedTravel() (*ConfirmedTravel, bool) {
	if s.confirmed != nil {
		return s.confirmed, true
	}
	return nil, false
}

// AssumedTravel returns the embedded AssumedTravel and true if this state
// is Opening.
func (s State) AssumedTravel() (*AssumedTravel, bool) {
	if s.assumed != nil {
		return s.assumed, true
	}
	return nil, false
}

// Expiry returns the embedded travel's expiry channel, or nil if the state
// is not travelling. A nil channel blocks forever in a select, which is
// exactly the desired "pending forever" behaviour for stable states.
func (s State) Expiry() <-chan time.Time {
	switch {
	case s.confirmed != nil:
		return s.confirmed.Expiry()
	case s.assumed != nil:
		return s.assumed.Expiry()
	default:
		return nil
	}
}

// StopTravel cancels the embedded travel's timer, if any. Called whenever
// a State is discarded in favour of a new one, so abandoned timers never
// fire into a state that has moved on.
func (s State) StopTravel() {
	switch {
	case s.confirmed != nil:
		s.confirmed.Stop()
	case s.assumed != nil:
		s.assumed.Stop()
	}
}

// TopicString renders the state for the state topic. The seven cases
// collapse to four published values.
func (s State) TopicString() string {
	switch s.Kind {
	case KindAttemptingOpen, KindOpening:
		return "opening"
	case KindClosing:
		return "closing"
	case KindStuckOpen, KindOpen:
		return "open"
	default: // KindStuckClosed, KindClosed
		return "closed"
	}
}

// StuckString renders the stuck sideband flag for the stuck topic.
func (s State) StuckString() string {
	if s.Kind == KindStuckOpen || s.Kind == KindStuckClosed {
		return "stuck"
	}
	return "ok"
}

// EndState returns the TargetState this state corresponds to when not
// travelling, used to decide whether a commanded target is already a
// no-op. ok is false while travelling, since there is no single settled
// endpoint yet.
func (s State) EndState() (target TargetState, ok bool) {
	switch s.Kind {
	case KindClosed, KindStuckClosed:
		return TargetClosed, true
	case KindOpen, KindStuckOpen:
		return TargetOpen, true
	default:
		return 0, false
	}
}
