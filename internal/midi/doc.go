// Package midi connects the bridge to a physical control surface
// through portmidi.
//
// The Driver implements both bridge.EventSource (polled input) and
// bridge.SignalOutput (LED feedback). Input is drained with
// non-blocking polls so the reconciliation loop never stalls on the
// device; decoding happens inline because a 7-bit message costs
// nothing to translate.
//
// # Port Selection
//
// Ports are matched by exact name first, then by substring, because
// ALSA decorates names with client and port numbers that change
// across reboots ("Launch Control XL:Launch Control XL MIDI 1 20:0").
//
// # Signals
//
// Acknowledgement signals map to note velocities understood by the
// Launch Control XL's LED matrix: red for off, green for on, amber
// while a change awaits confirmation. Other surfaces with
// velocity-driven LEDs work unchanged, just with different colours.
package midi
