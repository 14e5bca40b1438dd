package midi

import "github.com/nerrad567/gray-surface/internal/bridge"

// MIDI status byte constants. The high nibble is the message kind,
// the low nibble the 0-based channel.
const (
	statusNoteOff       = 0x80
	statusNoteOn        = 0x90
	statusControlChange = 0xB0
	statusKindMask      = 0xF0
	statusChannelMask   = 0x0F
)

// Launch Control XL LED velocities. The surface encodes colour and
// brightness in the note velocity.
const (
	velocityOff   = 0
	velocityRed   = 15
	velocityGreen = 60
	velocityAmber = 63
)

// decodeEvent translates one raw portmidi message into an input
// event. Returns false for message kinds the bridge does not consume
// (aftertouch, pitch bend, sysex headers).
//
// A NoteOn with velocity zero is a release by MIDI convention and is
// reported as NoteOff.
func decodeEvent(status, data1, data2 int64) (bridge.InputEvent, bool) {
	channel := uint8(status&statusChannelMask) + 1
	identifier := uint8(data1 & 0x7F)
	value := uint8(data2 & 0x7F)

	switch status & statusKindMask {
	case statusControlChange:
		return bridge.InputEvent{
			Channel:    channel,
			Identifier: identifier,
			Kind:       bridge.ControlChange,
			Value:      value,
		}, true
	case statusNoteOn:
		if value == 0 {
			return bridge.InputEvent{
				Channel:    channel,
				Identifier: identifier,
				Kind:       bridge.NoteOff,
			}, true
		}
		return bridge.InputEvent{
			Channel:    channel,
			Identifier: identifier,
			Kind:       bridge.NoteOn,
			Value:      value,
		}, true
	case statusNoteOff:
		return bridge.InputEvent{
			Channel:    channel,
			Identifier: identifier,
			Kind:       bridge.NoteOff,
		}, true
	default:
		return bridge.InputEvent{}, false
	}
}

// velocityFor maps an acknowledgement signal to an LED velocity.
func velocityFor(signal bridge.Signal) uint8 {
	switch signal {
	case bridge.SignalSteadyOff:
		return velocityRed
	case bridge.SignalSteadyOn:
		return velocityGreen
	case bridge.SignalTransitioning:
		return velocityAmber
	default:
		return velocityOff
	}
}

// encodeSignal builds the raw message that lights (or extinguishes)
// the indicator behind a note. Velocity zero goes out as NoteOff so
// surfaces that ignore zero-velocity NoteOn still clear the LED.
func encodeSignal(channel, note uint8, signal bridge.Signal) (status, data1, data2 int64) {
	velocity := velocityFor(signal)
	kind := int64(statusNoteOn)
	if velocity == velocityOff {
		kind = statusNoteOff
	}
	return kind | int64(channel-1), int64(note), int64(velocity)
}
