// Garage Door Core - Networked Garage Door Controller
//
// This is the main entry point for the Garage Door Core application: a
// single-door bridge between an MQTT broker and a physical garage door
// driven by a dry-contact relay remote, corroborated by an external
// contact sensor.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/garagedoor-core/internal/door"
	"github.com/nerrad567/garagedoor-core/internal/hardware/gpio"
	"github.com/nerrad567/garagedoor-core/internal/infrastructure/config"
	"github.com/nerrad567/garagedoor-core/internal/infrastructure/logging"
	"github.com/nerrad567/garagedoor-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/garagedoor-core/internal/netmonitor"
	"github.com/nerrad567/garagedoor-core/internal/supervisor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// defaultConfigPath is used when GARAGEDOOR_CONFIG is not set.
const defaultConfigPath = "/etc/garagedoor/config.yaml"

func main() {
	fmt.Printf("Garage Door Core %s (%s) built %s\n", version, commit, date)
	fmt.Println("---")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath resolves the configuration file path, honoring an
// environment override.
func getConfigPath() string {
	if v := os.Getenv("GARAGEDOOR_CONFIG"); v != "" {
		return v
	}
	return defaultConfigPath
}

// run wires configuration, logging, transport, hardware, and the door
// state machine together, then blocks until ctx is cancelled or a fatal
// error terminates the supervised task group. Separated from main for
// testability.
func run(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	runID := uuid.NewString()
	logger := logging.New(cfg.Logging, version).WithDoor(cfg.Door.ID).With("run_id", runID)
	logger.Info("starting garage door core")

	conventional := door.Topics{ID: cfg.Door.ID}
	logger.Debug("door topic configuration",
		"command_topic", cfg.Door.CommandTopic,
		"state_topic", cfg.Door.StateTopic,
		"stuck_topic", cfg.Door.StuckTopic,
		"conventional_command_topic", conventional.Command(),
		"conventional_state_topic", conventional.State(),
		"conventional_stuck_topic", conventional.Stuck(),
	)

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to mqtt broker: %w", err)
	}
	mqttClient.SetLogger(logger)
	defer func() {
		if err := mqttClient.Close(); err != nil {
			logger.Warn("closing mqtt client", "error", err)
		}
	}()

	line, err := newGPIOLine(cfg.Hardware.GPIO, cfg.Door.Remote.Pin)
	if err != nil {
		return fmt.Errorf("opening gpio line: %w", err)
	}
	defer func() {
		if err := line.Close(); err != nil {
			logger.Warn("closing gpio line", "error", err)
		}
	}()

	remote := door.NewDoorRemote(line, door.NewRemoteMutex(), cfg.Door.Remote.PressedDuration(), cfg.Door.Remote.WaitDuration())

	detector, err := newDetector(subscriberAdapter{mqttClient}, cfg.Door.Detector)
	if err != nil {
		return fmt.Errorf("configuring door detector: %w", err)
	}

	doorCfg := door.Config{
		ID:                       cfg.Door.ID,
		CommandTopic:             cfg.Door.CommandTopic,
		StateTopic:               cfg.Door.StateTopic,
		StuckTopic:               cfg.Door.StuckTopic,
		QoS:                      byte(cfg.MQTT.QoS),
		TravelDuration:           cfg.Door.TravelDuration(),
		MaxAttempts:              cfg.Door.MaxAttempts,
		MaxRemoteLatencyDuration: cfg.Door.MaxRemoteLatencyDuration(),
	}
	if cfg.Door.InitialTargetState != "" {
		if target, ok := door.ParseTargetState(cfg.Door.InitialTargetState); ok {
			doorCfg.InitialTargetState = &target
		}
	}

	doorMachine := door.NewDoor(doorCfg, subscriberAdapter{mqttClient}, mqttClient, detector, remote, logger)

	doorRunner := supervisor.NewRunner(supervisor.Config{
		Name:               cfg.Door.ID,
		RestartDelay:       cfg.Supervisor.RestartDelay(),
		MaxRestartAttempts: cfg.Supervisor.MaxRestartAttempts,
	})
	doorRunner.SetLogger(logger)

	monitor := netmonitor.NewPollingMonitor(netmonitor.Config{
		Interface:    cfg.Network.Interface,
		DialTarget:   fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		PollInterval: cfg.Network.PollInterval(),
		DialTimeout:  cfg.Network.DialTimeout(),
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return doorRunner.Run(groupCtx, doorMachine.Run)
	})

	group.Go(func() error {
		return watchNetwork(groupCtx, monitor, cfg.Network.DisconnectGrace(), doorRunner, logger)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("garage door core stopped")
	return nil
}

// newGPIOLine opens the configured GPIO backing for the door remote's pin.
func newGPIOLine(cfg config.GPIOConfig, pin string) (gpio.Line, error) {
	if cfg.Chip == "mock" {
		return gpio.NewMockLine(), nil
	}
	return gpio.OpenSysfs(pin)
}

// newDetector builds the configured detector backing.
func newDetector(sub door.Subscriber, cfg config.DetectorConfig) (door.Detector, error) {
	switch cfg.Kind {
	case "none":
		return door.NewAssumedDetector(door.DetectedClosed), nil
	default:
		return door.NewContactSensorDetector(sub, cfg.SensorTopic, 1), nil
	}
}

// subscriberAdapter adapts *mqtt.Client's MessageHandler (a package-local
// named type) to door.Subscriber's MessageHandler, since the two are
// structurally identical but distinct named types and Go does not treat
// them as interchangeable for interface satisfaction.
type subscriberAdapter struct {
	client *mqtt.Client
}

func (a subscriberAdapter) Subscribe(topic string, qos byte, handler door.MessageHandler) error {
	return a.client.Subscribe(topic, qos, func(topic string, payload []byte) error {
		return handler(topic, payload)
	})
}

// watchNetwork restarts the door task when the network has been
// unreachable for longer than grace, implementing the "network
// disconnected is fatal to the whole process, triggers supervisor
// restart" requirement without actually terminating the process: the
// supervisor's own restart path already knows how to relaunch a failed
// task, so a disconnect past its grace period simply cancels the door
// task's current attempt via Restart.
func watchNetwork(ctx context.Context, monitor netmonitor.Monitor, grace time.Duration, runner *supervisor.Runner, logger *logging.Logger) error {
	events, err := monitor.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching network: %w", err)
	}

	var graceTimer *time.Timer
	defer func() {
		if graceTimer != nil {
			graceTimer.Stop()
		}
	}()

	for {
		select {
		case connected, ok := <-events:
			if !ok {
				return nil
			}
			if connected {
				if graceTimer != nil {
					graceTimer.Stop()
					graceTimer = nil
				}
				continue
			}
			logger.Warn("network unreachable", "grace", grace)
			graceTimer = time.NewTimer(grace)

		case <-graceExpiry(graceTimer):
			logger.Error("network disconnected past grace period, restarting door task")
			runner.Restart()
			graceTimer = nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// graceExpiry returns t's channel, or nil (which blocks forever in a
// select) if no grace timer is currently armed.
func graceExpiry(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
