package door

import "fmt"

// Topics builds the conventional MQTT topic names for a door identified
// by ID. A running Door always publishes and subscribes on the literal
// topic strings from its Config, never on what Topics computes; Topics
// exists so logs can show the naming convention a deployment's config is
// following (or diverging from) without hardcoding the scheme twice.
//
// Grounded on the teacher's mqtt.Topics builder, narrowed from Gray
// Logic's multi-category bridge/core/system/UI hierarchy down to the one
// flat per-door namespace this repository needs.
type Topics struct {
	ID string
}

// Command returns the conventional command topic for this door.
func (t Topics) Command() string {
	return fmt.Sprintf("garagedoor/%s/command", t.ID)
}

// State returns the conventional state topic for this door.
func (t Topics) State() string {
	return fmt.Sprintf("garagedoor/%s/state", t.ID)
}

// Stuck returns the conventional stuck-sideband topic for this door.
func (t Topics) Stuck() string {
	return fmt.Sprintf("garagedoor/%s/stuck", t.ID)
}

// Sensor returns the conventional contact-sensor topic for this door.
func (t Topics) Sensor() string {
	return fmt.Sprintf("garagedoor/%s/sensor", t.ID)
}
