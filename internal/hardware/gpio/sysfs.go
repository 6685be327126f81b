package gpio

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysfsGPIORoot = "/sys/class/gpio"

// SysfsLine drives a single GPIO pin through the kernel's /sys/class/gpio
// interface: export the pin, set its direction to "out", then write "1" or
// "0" to its value file.
type SysfsLine struct {
	pin       string
	valuePath string
}

// OpenSysfs exports pin (e.g. "17") and configures it as a low output.
//
// The export write is skipped when the pin is already exported. Returns an
// error if the export, direction, or initial value write fails — typically
// because the process lacks permission on /sys/class/gpio.
func OpenSysfs(pin string) (*SysfsLine, error) {
	exportPath := filepath.Join(sysfsGPIORoot, "export")
	pinDir := filepath.Join(sysfsGPIORoot, "gpio"+pin)

	if _, err := os.Stat(pinDir); os.IsNotExist(err) {
		if err := os.WriteFile(exportPath, []byte(pin), 0200); err != nil {
			return nil, fmt.Errorf("gpio: exporting pin %s: %w", pin, err)
		}
	}

	directionPath := filepath.Join(pinDir, "direction")
	if err := os.WriteFile(directionPath, []byte("out"), 0200); err != nil {
		return nil, fmt.Errorf("gpio: setting pin %s direction: %w", pin, err)
	}

	l := &SysfsLine{
		pin:       pin,
		valuePath: filepath.Join(pinDir, "value"),
	}

	if err := l.SetLow(); err != nil {
		return nil, fmt.Errorf("gpio: initializing pin %s low: %w", pin, err)
	}

	return l, nil
}

// SetHigh writes "1" to the pin's value file.
func (l *SysfsLine) SetHigh() error {
	return l.write("1")
}

// SetLow writes "0" to the pin's value file.
func (l *SysfsLine) SetLow() error {
	return l.write("0")
}

func (l *SysfsLine) write(value string) error {
	if err := os.WriteFile(l.valuePath, []byte(value), 0200); err != nil {
		return fmt.Errorf("gpio: writing pin %s: %w", l.pin, err)
	}
	return nil
}

// Close unexports the pin, returning it to the kernel's default state.
func (l *SysfsLine) Close() error {
	unexportPath := filepath.Join(sysfsGPIORoot, "unexport")
	if err := os.WriteFile(unexportPath, []byte(l.pin), 0200); err != nil {
		return fmt.Errorf("gpio: unexporting pin %s: %w", l.pin, err)
	}
	return nil
}
