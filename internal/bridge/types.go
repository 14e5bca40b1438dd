package bridge

import (
	"context"
	"time"
)

// MessageKind identifies the kind of control-surface message an
// InputEvent was decoded from.
type MessageKind uint8

const (
	// ControlChange is a continuous controller message (knob, fader).
	ControlChange MessageKind = iota

	// NoteOn is a button press. Value carries the press velocity.
	NoteOn

	// NoteOff is a button release. Value is always 0.
	NoteOff
)

// String returns a human-readable name for logging.
func (k MessageKind) String() string {
	switch k {
	case ControlChange:
		return "cc"
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	default:
		return "unknown"
	}
}

// InputEvent is a single decoded control-surface event.
// Channel is 1-based (1-16) to match how surfaces label their channels.
// Identifier is the controller number (CC) or note number (Note).
// Value is the 7-bit payload (0-127).
type InputEvent struct {
	Channel    uint8
	Identifier uint8
	Kind       MessageKind
	Value      uint8
}

// Signal is an acknowledgement level shown on the surface, typically
// as an LED colour behind a button.
type Signal uint8

const (
	// SignalOff extinguishes the indicator.
	SignalOff Signal = iota

	// SignalSteadyOff indicates the remote entity is confirmed off.
	SignalSteadyOff

	// SignalSteadyOn indicates the remote entity is confirmed on.
	SignalSteadyOn

	// SignalTransitioning indicates a state change was requested but
	// not yet confirmed by the remote system.
	SignalTransitioning
)

// String returns a human-readable name for logging.
func (s Signal) String() string {
	switch s {
	case SignalOff:
		return "off"
	case SignalSteadyOff:
		return "steady_off"
	case SignalSteadyOn:
		return "steady_on"
	case SignalTransitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}

// Attribute names accepted by Target.Update. Mappings bind a physical
// control to one of these per target.
const (
	AttrBrightness = "brightness"
	AttrHue        = "hue"
	AttrSaturation = "saturation"
	AttrRed        = "red"
	AttrGreen      = "green"
	AttrBlue       = "blue"
	AttrButton     = "button"
)

// EventSource supplies decoded input events from the control surface.
// Implemented by the MIDI driver and by mocks in tests.
type EventSource interface {
	// PollPending drains and returns all events buffered since the
	// last call. Returns nil when nothing is pending. Must not block.
	PollPending() []InputEvent

	// IsConnected reports whether the underlying device is usable.
	IsConnected() bool

	// Reconnect attempts to re-establish the device connection.
	Reconnect() error
}

// StateClient reads and writes remote entity state.
// Implemented by the Home Assistant HTTP client.
type StateClient interface {
	// GetState returns the current state string for an entity
	// (e.g. "on", "off").
	GetState(ctx context.Context, entityID string) (string, error)

	// CallService invokes a service in a domain with the given payload.
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// SignalOutput delivers acknowledgement signals back to the surface.
// Implemented by the MIDI driver's output side.
type SignalOutput interface {
	// SetSignal lights the indicator behind the given note on the
	// given 1-based channel.
	SetSignal(channel, note uint8, signal Signal) error
}

// Target is a controllable remote entity fed by mapped input events.
//
// Update records an attribute change without performing I/O; it is
// called once per matching event during dispatch. Invoke gives the
// target one opportunity per tick to act on accumulated state; the
// target decides internally whether anything needs sending.
type Target interface {
	// EntityID returns the remote entity this target drives.
	EntityID() string

	// Update records a new raw value (0-127) for the named attribute.
	Update(attribute string, value uint8)

	// Invoke performs any outbound work the accumulated state requires.
	Invoke(ctx context.Context) error
}

// Recorder receives optional telemetry about loop activity.
// Implemented by the InfluxDB client; nil disables recording.
type Recorder interface {
	// RecordInput notes that count input events arrived in one tick.
	RecordInput(count int)

	// RecordServiceCall notes the outcome and latency of one outbound
	// state-change request.
	RecordServiceCall(entityID, service string, ok bool, elapsed time.Duration)
}

// Logger interface for testability.
// This allows injecting the application logger or a test recorder.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
