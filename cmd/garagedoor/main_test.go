package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/garagedoor-core/internal/infrastructure/config"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("GARAGEDOOR_CONFIG")
	defer os.Setenv("GARAGEDOOR_CONFIG", originalEnv)

	os.Setenv("GARAGEDOOR_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_ValidationFailure verifies run fails when required fields are missing.
func TestRun_ValidationFailure(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
door:
  id: ""
mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
  qos: 1
hardware:
  gpio:
    chip: "mock"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("GARAGEDOOR_CONFIG")
	defer os.Setenv("GARAGEDOOR_CONFIG", originalEnv)
	os.Setenv("GARAGEDOOR_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail validation with empty door.id")
	}
}

// TestGetConfigPath_Default verifies the default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("GARAGEDOOR_CONFIG")
	defer os.Setenv("GARAGEDOOR_CONFIG", originalEnv)

	os.Unsetenv("GARAGEDOOR_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies the environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("GARAGEDOOR_CONFIG")
	defer os.Setenv("GARAGEDOOR_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("GARAGEDOOR_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_MQTTUnreachable verifies run fails promptly when the configured
// broker refuses the connection, rather than hanging.
func TestRun_MQTTUnreachable(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
door:
  id: "test-door"
  command_topic: "garagedoor/door/command"
  state_topic: "garagedoor/door/state"
  travel_duration_ms: 1000
  max_attempts: 1
  detector:
    kind: "none"
  remote:
    pin: "17"
mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
  qos: 1
hardware:
  gpio:
    chip: "mock"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("GARAGEDOOR_CONFIG")
	defer os.Setenv("GARAGEDOOR_CONFIG", originalEnv)
	os.Setenv("GARAGEDOOR_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail when the broker is unreachable")
	}
	t.Logf("run() returned expected error: %v", err)
}

// TestNewGPIOLine_Mock verifies the mock chip selection.
func TestNewGPIOLine_Mock(t *testing.T) {
	line, err := newGPIOLine(config.GPIOConfig{Chip: "mock"}, "17")
	if err != nil {
		t.Fatalf("newGPIOLine() error = %v", err)
	}
	defer line.Close()

	if err := line.SetHigh(); err != nil {
		t.Errorf("SetHigh() error = %v", err)
	}
}
