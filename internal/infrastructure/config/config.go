package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Garage Door Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	WiFi       WiFiConfig       `yaml:"wifi"`
	Network    NetworkConfig    `yaml:"network"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Door       DoorConfig       `yaml:"door"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Hardware   HardwareConfig   `yaml:"hardware"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WiFiConfig contains network association credentials. Garage Door Core
// does not bring up Wi-Fi itself (see internal/netmonitor); these
// credentials exist purely so the deployment's network bring-up
// mechanism has somewhere to read them from.
type WiFiConfig struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

// NetworkConfig tunes the reachability monitor (internal/netmonitor) that
// stands in for the original firmware's Wi-Fi bring-up collaborator on
// this hosted Linux deployment target.
type NetworkConfig struct {
	// Interface, if set, must be reported up by the kernel or the monitor
	// considers the host disconnected regardless of the dial probe.
	Interface string `yaml:"interface"`

	PollIntervalSeconds    int `yaml:"poll_interval_seconds"`
	DialTimeoutSeconds     int `yaml:"dial_timeout_seconds"`
	DisconnectGraceSeconds int `yaml:"disconnect_grace_seconds"`
}

// PollInterval returns the configured reachability poll interval as a Duration.
func (n NetworkConfig) PollInterval() time.Duration {
	return time.Duration(n.PollIntervalSeconds) * time.Second
}

// DialTimeout returns the configured probe dial timeout as a Duration.
func (n NetworkConfig) DialTimeout() time.Duration {
	return time.Duration(n.DialTimeoutSeconds) * time.Second
}

// DisconnectGrace returns how long the network may be unreachable before
// the supervisor treats it as fatal and restarts the door task.
func (n NetworkConfig) DisconnectGrace() time.Duration {
	return time.Duration(n.DisconnectGraceSeconds) * time.Second
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker       MQTTBrokerConfig    `yaml:"broker"`
	Auth         MQTTAuthConfig      `yaml:"auth"`
	QoS          int                 `yaml:"qos"`
	Reconnect    MQTTReconnectConfig `yaml:"reconnect"`
	Availability AvailabilityConfig  `yaml:"availability"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// AvailabilityConfig contains last-will and online/offline announcement settings.
type AvailabilityConfig struct {
	Topic   string `yaml:"topic"`
	Online  string `yaml:"online"`
	Offline string `yaml:"offline"`
}

// DoorConfig contains the door state machine's configuration.
type DoorConfig struct {
	// ID names this door for log fields and the supervisor's task name.
	// The remote mutex (C5) is shared process-wide regardless of how many
	// doors a deployment configures, but this repository drives exactly
	// one door per process; ID is carried so a future multi-door
	// supervisor can key state by it without a data model change.
	ID string `yaml:"id"`

	CommandTopic       string `yaml:"command_topic"`
	StateTopic         string `yaml:"state_topic"`
	StuckTopic         string `yaml:"stuck_topic"`
	InitialTargetState string `yaml:"initial_target_state"` // "OPEN", "CLOSED", or ""

	TravelDurationMS int `yaml:"travel_duration_ms"`
	MaxAttempts      int `yaml:"max_attempts"`

	Detector DetectorConfig `yaml:"detector"`
	Remote   RemoteConfig   `yaml:"remote"`
}

// DetectorConfig selects and configures the door detector backing.
type DetectorConfig struct {
	// Kind is "mqtt_contact" (default, a retained contact-sensor topic)
	// or "none" (the assumed detector: no sensor feedback, travel
	// timers alone decide when the door has finished moving).
	Kind        string `yaml:"kind"`
	SensorTopic string `yaml:"sensor_topic"`
}

// RemoteConfig contains the door remote's GPIO and timing settings.
type RemoteConfig struct {
	Pin                  string `yaml:"pin"`
	PressedDurationMS    int    `yaml:"pressed_duration_ms"`
	WaitDurationMS       int    `yaml:"wait_duration_ms"`
	MaxLatencyDurationMS int    `yaml:"max_latency_duration_ms"`
}

// SupervisorConfig contains the restart-on-failure harness's settings.
type SupervisorConfig struct {
	RestartDelaySeconds int `yaml:"restart_delay_seconds"`
	MaxRestartAttempts  int `yaml:"max_restart_attempts"` // 0 means unlimited
}

// HardwareConfig contains hardware abstraction settings.
type HardwareConfig struct {
	GPIO GPIOConfig `yaml:"gpio"`
}

// GPIOConfig selects the GPIO line backend.
type GPIOConfig struct {
	// Chip selects the line driver: "sysfs" (default, real hardware via
	// /sys/class/gpio) or "mock" (in-memory, for development benches).
	Chip string `yaml:"chip"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GARAGEDOOR_SECTION_KEY
// For example: GARAGEDOOR_MQTT_HOST, GARAGEDOOR_WIFI_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "garagedoor-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			Availability: AvailabilityConfig{
				Topic:   "garagedoor/system/status",
				Online:  "online",
				Offline: "offline",
			},
		},
		Door: DoorConfig{
			ID:               "door-1",
			TravelDurationMS: 30_000,
			MaxAttempts:      3,
			Detector: DetectorConfig{
				Kind: "mqtt_contact",
			},
			Remote: RemoteConfig{
				PressedDurationMS:    500,
				WaitDurationMS:       1_000,
				MaxLatencyDurationMS: 2_000,
			},
		},
		Network: NetworkConfig{
			PollIntervalSeconds:    10,
			DialTimeoutSeconds:     3,
			DisconnectGraceSeconds: 30,
		},
		Supervisor: SupervisorConfig{
			RestartDelaySeconds: 5,
			MaxRestartAttempts:  0,
		},
		Hardware: HardwareConfig{
			GPIO: GPIOConfig{
				Chip: "sysfs",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GARAGEDOOR_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// WiFi
	if v := os.Getenv("GARAGEDOOR_WIFI_SSID"); v != "" {
		cfg.WiFi.SSID = v
	}
	if v := os.Getenv("GARAGEDOOR_WIFI_PASSWORD"); v != "" {
		cfg.WiFi.Password = v
	}

	// MQTT
	if v := os.Getenv("GARAGEDOOR_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GARAGEDOOR_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GARAGEDOOR_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Door
	if v := os.Getenv("GARAGEDOOR_DOOR_ID"); v != "" {
		cfg.Door.ID = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Door validation
	if c.Door.ID == "" {
		errs = append(errs, "door.id is required")
	}
	if c.Door.CommandTopic == "" {
		errs = append(errs, "door.command_topic is required")
	}
	if c.Door.StateTopic == "" {
		errs = append(errs, "door.state_topic is required")
	}
	if c.Door.TravelDurationMS <= 0 {
		errs = append(errs, "door.travel_duration_ms must be positive")
	}
	if c.Door.MaxAttempts < 1 {
		errs = append(errs, "door.max_attempts must be at least 1")
	}
	if c.Door.InitialTargetState != "" && c.Door.InitialTargetState != "OPEN" && c.Door.InitialTargetState != "CLOSED" {
		errs = append(errs, "door.initial_target_state must be OPEN, CLOSED, or empty")
	}

	switch c.Door.Detector.Kind {
	case "mqtt_contact":
		if c.Door.Detector.SensorTopic == "" {
			errs = append(errs, "door.detector.sensor_topic is required when detector.kind is mqtt_contact")
		}
	case "none":
		// assumed detector, no sensor topic needed
	default:
		errs = append(errs, fmt.Sprintf("door.detector.kind %q is not recognised", c.Door.Detector.Kind))
	}

	if c.Door.Remote.Pin == "" {
		errs = append(errs, "door.remote.pin is required")
	}

	// Hardware validation
	switch c.Hardware.GPIO.Chip {
	case "sysfs", "mock":
	default:
		errs = append(errs, fmt.Sprintf("hardware.gpio.chip %q is not recognised", c.Hardware.GPIO.Chip))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TravelDuration returns the configured door travel duration as a Duration.
func (d DoorConfig) TravelDuration() time.Duration {
	return time.Duration(d.TravelDurationMS) * time.Millisecond
}

// PressedDuration returns the remote's signal pulse width as a Duration.
func (r RemoteConfig) PressedDuration() time.Duration {
	return time.Duration(r.PressedDurationMS) * time.Millisecond
}

// WaitDuration returns the remote's post-press guard interval as a Duration.
func (r RemoteConfig) WaitDuration() time.Duration {
	return time.Duration(r.WaitDurationMS) * time.Millisecond
}

// MaxLatencyDuration returns the remote's upper-bound motion-start latency as a Duration.
func (r RemoteConfig) MaxLatencyDuration() time.Duration {
	return time.Duration(r.MaxLatencyDurationMS) * time.Millisecond
}

// MaxRemoteLatencyDuration is the ConfirmedTravel bound used while
// AttemptingOpen: press + wait + the door's worst-case latency before it
// starts moving, on top of which the travel duration itself still applies.
func (d DoorConfig) MaxRemoteLatencyDuration() time.Duration {
	return d.Remote.PressedDuration() + d.Remote.WaitDuration() + d.Remote.MaxLatencyDuration()
}

// RestartDelay returns the supervisor's restart backoff as a Duration.
func (s SupervisorConfig) RestartDelay() time.Duration {
	return time.Duration(s.RestartDelaySeconds) * time.Second
}
