// Package gpio provides a boolean-line abstraction over a single GPIO pin.
//
// The door remote (see internal/door) only ever needs to set a line high or
// low; this package keeps that contract narrow so the door state machine
// never depends on a specific board or driver.
//
// # Backings
//
//   - SysfsLine drives a real pin through the kernel's /sys/class/gpio
//     interface. No third-party GPIO driver appears anywhere in this
//     project's dependency pack, so this backing is implemented directly
//     against the kernel ABI rather than against an ecosystem library.
//   - MockLine is an in-memory line for tests and development benches.
//
// # Usage
//
//	line, err := gpio.OpenSysfs("17")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer line.Close()
//	line.SetHigh()
package gpio
