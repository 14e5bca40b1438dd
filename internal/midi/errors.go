package midi

import "errors"

// Sentinel errors for MIDI operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, midi.ErrPortNotFound) {
//	    // Report the available ports to the user
//	}
var (
	// ErrInitFailed indicates the portmidi subsystem failed to start.
	ErrInitFailed = errors.New("midi: initialisation failed")

	// ErrPortNotFound indicates no device matched the configured
	// port name.
	ErrPortNotFound = errors.New("midi: port not found")

	// ErrOpenFailed indicates a matched port could not be opened.
	ErrOpenFailed = errors.New("midi: open failed")

	// ErrNotConnected indicates the driver has no usable device.
	ErrNotConnected = errors.New("midi: not connected")
)
