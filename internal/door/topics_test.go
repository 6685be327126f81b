package door

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{ID: "side-door"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Command", topics.Command(), "garagedoor/side-door/command"},
		{"State", topics.State(), "garagedoor/side-door/state"},
		{"Stuck", topics.Stuck(), "garagedoor/side-door/stuck"},
		{"Sensor", topics.Sensor(), "garagedoor/side-door/sensor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}
