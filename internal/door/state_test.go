package door

import "testing"

func TestParseTargetState(t *testing.T) {
	cases := []struct {
		payload string
		want    TargetState
		ok      bool
	}{
		{"OPEN", TargetOpen, true},
		{"CLOSED", TargetClosed, true},
		{"open", 0, false},
		{"", 0, false},
		{"OPENED", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseTargetState(c.payload)
		if ok != c.ok {
			t.Errorf("ParseTargetState(%q) ok = %v, want %v", c.payload, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseTargetState(%q) = %v, want %v", c.payload, got, c.want)
		}
	}
}

func TestFromDetectedState(t *testing.T) {
	cases := []struct {
		in   DetectedState
		want Kind
	}{
		{DetectedClosed, KindClosed},
		{DetectedOpen, KindOpen},
		{DetectedStuck, KindOpen},
	}
	for _, c := range cases {
		got := FromDetectedState(c.in)
		if got.Kind != c.want {
			t.Errorf("FromDetectedState(%v).Kind = %v, want %v", c.in, got.Kind, c.want)
		}
	}
}

func TestState_StableStatesDoNotTravel(t *testing.T) {
	for _, s := range []State{NewClosed(), NewOpen(), NewStuckClosed(), NewStuckOpen()} {
		if s.IsTravelling() {
			t.Errorf("%v: IsTravelling() = true, want false", s.Kind)
		}
		if s.Expiry() != nil {
			t.Errorf("%v: Expiry() non-nil for a stable state", s.Kind)
		}
		if _, ok := s.ConfirmedTravel(); ok {
			t.Errorf("%v: ConfirmedTravel() ok = true, want false", s.Kind)
		}
		if _, ok := s.AssumedTravel(); ok {
			t.Errorf("%v: AssumedTravel() ok = true, want false", s.Kind)
		}
		// Stopping an already-stable state's (nonexistent) travel must not panic.
		s.StopTravel()
	}
}

func TestState_TravellingStatesCarryTravel(t *testing.T) {
	confirmed := NewConfirmedTravel(0, 1)
	defer confirmed.Stop()
	attempting := NewAttemptingOpen(confirmed)
	if !attempting.IsTravelling() {
		t.Fatal("AttemptingOpen: IsTravelling() = false, want true")
	}
	if _, ok := attempting.ConfirmedTravel(); !ok {
		t.Error("AttemptingOpen: ConfirmedTravel() ok = false, want true")
	}
	if attempting.Expiry() == nil {
		t.Error("AttemptingOpen: Expiry() = nil, want a live channel")
	}

	assumed := NewAssumedTravel(0)
	defer assumed.Stop()
	opening := NewOpening(assumed)
	if !opening.IsTravelling() {
		t.Fatal("Opening: IsTravelling() = false, want true")
	}
	if _, ok := opening.AssumedTravel(); !ok {
		t.Error("Opening: AssumedTravel() ok = false, want true")
	}

	closing := NewClosing(NewConfirmedTravel(0, 1))
	defer closing.StopTravel()
	if !closing.IsTravelling() {
		t.Fatal("Closing: IsTravelling() = false, want true")
	}
}

func TestState_TopicString(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{NewClosed(), "closed"},
		{NewStuckClosed(), "closed"},
		{NewOpen(), "open"},
		{NewStuckOpen(), "open"},
		{NewAttemptingOpen(NewConfirmedTravel(0, 1)), "opening"},
		{NewOpening(NewAssumedTravel(0)), "opening"},
		{NewClosing(NewConfirmedTravel(0, 1)), "closing"},
	}
	for _, c := range cases {
		defer c.state.StopTravel()
		if got := c.state.TopicString(); got != c.want {
			t.Errorf("%v.TopicString() = %q, want %q", c.state.Kind, got, c.want)
		}
	}
}

func TestState_StuckString(t *testing.T) {
	if NewStuckOpen().StuckString() != "stuck" {
		t.Error("StuckOpen.StuckString() != \"stuck\"")
	}
	if NewStuckClosed().StuckString() != "stuck" {
		t.Error("StuckClosed.StuckString() != \"stuck\"")
	}
	if NewClosed().StuckString() != "ok" {
		t.Error("Closed.StuckString() != \"ok\"")
	}
	if NewOpen().StuckString() != "ok" {
		t.Error("Open.StuckString() != \"ok\"")
	}
}

func TestState_EndState(t *testing.T) {
	if target, ok := NewClosed().EndState(); !ok || target != TargetClosed {
		t.Errorf("Closed.EndState() = (%v, %v), want (TargetClosed, true)", target, ok)
	}
	if target, ok := NewStuckClosed().EndState(); !ok || target != TargetClosed {
		t.Errorf("StuckClosed.EndState() = (%v, %v), want (TargetClosed, true)", target, ok)
	}
	if target, ok := NewOpen().EndState(); !ok || target != TargetOpen {
		t.Errorf("Open.EndState() = (%v, %v), want (TargetOpen, true)", target, ok)
	}
	if target, ok := NewStuckOpen().EndState(); !ok || target != TargetOpen {
		t.Errorf("StuckOpen.EndState() = (%v, %v), want (TargetOpen, true)", target, ok)
	}
	closing := NewClosing(NewConfirmedTravel(0, 1))
	defer closing.StopTravel()
	if _, ok := closing.EndState(); ok {
		t.Error("Closing.EndState() ok = true, want false")
	}
}
