package door

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Detector is the abstract producer of DetectedState values (C1).
//
// Listen resolves once the first reading is available (or ctx is
// cancelled/times out) and returns a stream of subsequent readings. The
// stream is lazy and not restartable: callers construct a fresh Detector
// per door task.
type Detector interface {
	Listen(ctx context.Context) (initial DetectedState, events <-chan DetectedState, err error)
}

// MessageHandler mirrors the MQTT client's handler signature without
// importing the infrastructure/mqtt package, so this package can be tested
// against a fake subscriber with no broker involved — the same narrow-
// interface approach the bridge packages use for their MQTT dependency.
type MessageHandler func(topic string, payload []byte) error

// Subscriber is the narrow slice of the MQTT client a Detector needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler MessageHandler) error
}

// contactPayload is the JSON document carried on the sensor topic.
// contact=true means the door is physically closed against the sensor;
// false means it isn't. Any other fields are ignored.
type contactPayload struct {
	Contact bool `json:"contact"`
}

// detectedStateFromPayload parses a sensor topic payload. Any parse failure
// is treated as Stuck: the detector cannot tell whether the door is open or
// closed, so it must not guess.
func detectedStateFromPayload(payload []byte) DetectedState {
	var p contactPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return DetectedStuck
	}
	if p.Contact {
		return DetectedClosed
	}
	return DetectedOpen
}

// eventBufferSize bounds the otherwise-unbounded detector stream. Go has no
// true unbounded channel; sensor updates arrive on the order of seconds, so
// a small buffer combined with a non-blocking send (dropping the oldest
// unread reading rather than blocking the MQTT handler goroutine) is a safe
// finite approximation of "never blocks, bounded by natural update rate".
const eventBufferSize = 4

// ContactSensorDetector backs C1 with an external contact sensor published
// over MQTT: subscribes to a sensor topic carrying {"contact": bool}.
type ContactSensorDetector struct {
	sub   Subscriber
	topic string
	qos   byte
}

// NewContactSensorDetector returns a Detector backed by topic on sub.
func NewContactSensorDetector(sub Subscriber, topic string, qos byte) *ContactSensorDetector {
	return &ContactSensorDetector{sub: sub, topic: topic, qos: qos}
}

// Listen subscribes to the sensor topic and waits for the first payload,
// relying on the broker's retained-message discipline to deliver the last
// known sensor value promptly. If ctx is cancelled (typically via a
// timeout set by the caller) before any payload arrives, it returns
// ErrInitializationTimeout.
func (d *ContactSensorDetector) Listen(ctx context.Context) (DetectedState, <-chan DetectedState, error) {
	events := make(chan DetectedState, eventBufferSize)
	initial := make(chan DetectedState, 1)
	var initialized bool

	err := d.sub.Subscribe(d.topic, d.qos, func(_ string, payload []byte) error {
		state := detectedStateFromPayload(payload)

		if !initialized {
			initialized = true
			initial <- state
			return nil
		}

		select {
		case events <- state:
		default:
			// Drop the oldest unread reading rather than block the MQTT
			// handler goroutine; only the latest reading is ever actionable.
			select {
			case <-events:
			default:
			}
			events <- state
		}
		return nil
	})
	if err != nil {
		return 0, nil, fmt.Errorf("door: subscribing to sensor topic: %w", err)
	}

	select {
	case first := <-initial:
		return first, events, nil
	case <-ctx.Done():
		return 0, nil, ErrInitializationTimeout
	}
}

// AssumedDetector backs C1 when no sensor exists at all (detector.kind =
// "none"): it never emits detector events, so every travel the door state
// machine enters resolves purely by timer. Grounded on the original
// implementation's commented-out assumed-state detector variant, which was
// never wired up but left as evidence the design anticipated this mode.
type AssumedDetector struct {
	// initial is the state the door is assumed to be in at boot, since
	// there is no sensor to ask.
	initial DetectedState
}

// NewAssumedDetector returns a Detector that never produces events.
func NewAssumedDetector(initial DetectedState) *AssumedDetector {
	return &AssumedDetector{initial: initial}
}

// Listen returns the configured initial state immediately and a stream
// that never fires.
func (d *AssumedDetector) Listen(_ context.Context) (DetectedState, <-chan DetectedState, error) {
	return d.initial, make(chan DetectedState), nil
}

// initializationTimeout is the default bound on Listen's wait for the
// first sensor reading before the caller gives up, used when
// Config.InitializationTimeout is not positive; the original value comes
// from the design's §4.4.1.
const initializationTimeout = 10 * time.Second
