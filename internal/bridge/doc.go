// Package bridge implements the reconciliation loop between a MIDI
// control surface and Home Assistant.
//
// This package manages:
//   - Input event dispatch via a mapping registry
//   - Target abstractions (lights, toggles) with cadence-gated sends
//   - Feedback monitors tracking optimistic vs confirmed state
//   - The single-threaded tick loop with reconnect backoff
//   - Health reporting over MQTT
//
// # Architecture
//
// The loop owns all target and monitor state, so none of it needs
// locking. Each tick drains the pending input events, applies them to
// the mapped targets, then gives every registered target and monitor
// one Invoke opportunity. Targets decide internally whether to act
// (cadence gate, dirty flag); the loop only sequences them.
//
//	MIDI source → Registry.Dispatch → Target.Update
//	                                  Target.Invoke  → Home Assistant
//	                                  Monitor.Invoke → Home Assistant (read)
//	                                                 → SignalOutput (LED)
//
// # Hardware Decoupling
//
// The loop never touches portmidi or HTTP directly. EventSource,
// StateClient, and SignalOutput are small interfaces implemented by
// internal/midi and internal/hass, and by hand-written mocks in tests.
//
// # Latency
//
// The tick interval (default 5ms) bounds input latency. Per-target
// cadences bound outbound request rates independently, so a fader
// sweep generating hundreds of events per second produces at most
// one service call per cadence window.
package bridge
