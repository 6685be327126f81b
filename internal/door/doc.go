// Package door implements one garage door's lifecycle as an explicit state
// machine (C4), fed by a pluggable sensor abstraction (C1, Detector), an
// emulated remote control (C2/C5, DoorRemote and RemoteMutex), and MQTT
// publish/subscribe collaborators supplied by the caller.
//
// # State
//
// The door has seven lifecycle states — Closed, Open, StuckClosed,
// StuckOpen, AttemptingOpen, Opening, Closing — modeled by State as a tagged
// union: a Kind plus at most one populated travel field. Go has no native
// sum type, so State's invariant is maintained entirely through its
// constructors in state.go.
//
// The three travelling states each own a travel (ConfirmedTravel or
// AssumedTravel), a timer-backed handle the select-loop in Run races against
// detector and command events. Closing and AttemptingOpen use
// ConfirmedTravel, which retries up to a configured attempt bound before the
// door is declared stuck; Opening uses AssumedTravel, which has no sensed
// endpoint and simply times out into Open.
//
// # Wiring
//
// Door depends only on narrow interfaces — Subscriber, Publisher, Detector —
// so it can be exercised in tests against in-memory fakes with no broker or
// GPIO hardware involved. A production caller wires a *mqtt.Client in as
// Publisher and, through a small handler-type adapter, as Subscriber, a
// ContactSensorDetector or AssumedDetector
// for Detector, and a DoorRemote backed by a gpio.Line for actuation.
package door
