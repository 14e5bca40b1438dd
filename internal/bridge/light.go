package bridge

import (
	"context"
	"fmt"
	"time"
)

// ColorMode selects the colour space a light is driven in.
type ColorMode uint8

const (
	// ColorModeHS drives hue (0-360) and saturation (0-100).
	ColorModeHS ColorMode = iota

	// ColorModeRGB drives red, green, and blue components (0-255).
	ColorModeRGB
)

// String returns a human-readable name for logging.
func (m ColorMode) String() string {
	if m == ColorModeRGB {
		return "rgb"
	}
	return "hs"
}

// SendPolicy selects how a light's attributes reach the remote system.
type SendPolicy uint8

const (
	// SendCombined delivers colour and brightness in a single request
	// with a transition matching the cadence, so consecutive sends
	// blend smoothly.
	SendCombined SendPolicy = iota

	// SendTwoStage delivers colour and brightness as separate requests
	// with a short pause between them. Some lamp firmwares (Cync and
	// similar) drop combined payloads, so each attribute change is
	// sent alone and deduplicated against the last acknowledged send.
	SendTwoStage
)

// String returns a human-readable name for logging.
func (p SendPolicy) String() string {
	if p == SendTwoStage {
		return "two_stage"
	}
	return "combined"
}

// twoStagePause is the settle time between the colour and brightness
// requests of a two-stage send.
const twoStagePause = 100 * time.Millisecond

// LightConfig configures a Light target.
type LightConfig struct {
	// EntityID is the remote light entity (e.g. "light.office_lamp").
	EntityID string

	// Client performs the outbound service calls.
	Client StateClient

	// Mode is the colour space the mapped controls feed. Default HS.
	Mode ColorMode

	// Policy selects combined or two-stage delivery. Default combined.
	Policy SendPolicy

	// Cadence is the minimum interval between sends. Default 1s.
	Cadence time.Duration

	// Logger is optional.
	Logger Logger
}

// Light drives a dimmable colour light. Mapped controls accumulate
// raw attribute values through Update; Invoke flushes them to the
// remote system no more often than the cadence allows.
//
// Light keeps no goroutines and no locks; the loop serialises all
// calls.
type Light struct {
	entityID string
	client   StateClient
	mode     ColorMode
	policy   SendPolicy
	gate     Gate
	logger   Logger

	// Raw 7-bit attribute values as last received from the surface.
	brightness uint8
	hue        uint8
	saturation uint8
	red        uint8
	green      uint8
	blue       uint8

	// dirty is set by Update and cleared only after a fully
	// successful send, so failed sends retry on a later tick.
	dirty bool

	// Two-stage dedup state. lastBrightness is -1 and lastColorOK is
	// false until the corresponding stage first succeeds.
	lastBrightness int
	lastColor      [3]int
	lastColorOK    bool

	now   func() time.Time
	sleep func(time.Duration)
}

// NewLight builds a Light from config, applying defaults.
func NewLight(cfg LightConfig) (*Light, error) {
	if cfg.EntityID == "" {
		return nil, ErrEntityRequired
	}
	if cfg.Client == nil {
		return nil, ErrClientRequired
	}
	cadence := cfg.Cadence
	if cadence == 0 {
		cadence = time.Second
	}
	return &Light{
		entityID:       cfg.EntityID,
		client:         cfg.Client,
		mode:           cfg.Mode,
		policy:         cfg.Policy,
		gate:           Gate{Cadence: cadence},
		logger:         cfg.Logger,
		lastBrightness: -1,
		now:            time.Now,
		sleep:          time.Sleep,
	}, nil
}

// EntityID returns the remote entity this light drives.
func (l *Light) EntityID() string {
	return l.entityID
}

// CycleColorMode switches between HS and RGB interpretation of the
// mapped controls. No I/O occurs until the next dirty Invoke.
func (l *Light) CycleColorMode() {
	if l.mode == ColorModeHS {
		l.mode = ColorModeRGB
	} else {
		l.mode = ColorModeHS
	}
	l.logDebug("colour mode cycled", "mode", l.mode.String())
}

// Update records a raw controller value for one attribute.
// Unknown attributes are ignored with a debug log; a stale mapping
// must not break the event stream.
func (l *Light) Update(attribute string, value uint8) {
	switch attribute {
	case AttrBrightness:
		l.brightness = value
	case AttrHue:
		l.hue = value
	case AttrSaturation:
		l.saturation = value
	case AttrRed:
		l.red = value
	case AttrGreen:
		l.green = value
	case AttrBlue:
		l.blue = value
	default:
		l.logDebug("ignoring unknown attribute", "attribute", attribute)
		return
	}
	l.dirty = true
}

// Invoke sends accumulated attribute changes if the cadence window has
// elapsed and anything changed since the last successful send.
func (l *Light) Invoke(ctx context.Context) error {
	// Dirty check precedes the gate so idle ticks do not consume the
	// cadence window and delay the next real send.
	if !l.dirty {
		return nil
	}
	if !l.gate.Ready(l.now()) {
		return nil
	}
	if l.policy == SendTwoStage {
		return l.sendTwoStage(ctx)
	}
	return l.sendCombined(ctx)
}

// sendCombined delivers colour and brightness in one request. The
// transition equals the cadence so back-to-back sends chain into a
// continuous fade.
func (l *Light) sendCombined(ctx context.Context) error {
	data := map[string]any{
		"entity_id":  l.entityID,
		"brightness": fromController(l.brightness, 255),
		"transition": l.gate.Cadence.Seconds(),
	}
	switch l.mode {
	case ColorModeRGB:
		data["rgb_color"] = []int{
			fromController(l.red, 255),
			fromController(l.green, 255),
			fromController(l.blue, 255),
		}
	default:
		data["hs_color"] = []int{
			fromController(l.hue, 360),
			fromController(l.saturation, 100),
		}
	}
	if err := l.client.CallService(ctx, "light", "turn_on", data); err != nil {
		return fmt.Errorf("light %s: %w", l.entityID, err)
	}
	l.dirty = false
	return nil
}

// sendTwoStage delivers colour then brightness as separate requests,
// skipping stages whose value already matches the last successful
// send. The dirty flag clears only once every needed stage succeeded,
// so a partial failure retries just the failed stage next window.
func (l *Light) sendTwoStage(ctx context.Context) error {
	color := l.currentColor()
	if !l.lastColorOK || color != l.lastColor {
		data := map[string]any{"entity_id": l.entityID}
		if l.mode == ColorModeRGB {
			data["rgb_color"] = color[:]
		} else {
			data["hs_color"] = color[:2]
		}
		if err := l.client.CallService(ctx, "light", "turn_on", data); err != nil {
			return fmt.Errorf("light %s colour stage: %w", l.entityID, err)
		}
		l.lastColor = color
		l.lastColorOK = true
		l.sleep(twoStagePause)
	}

	brightness := fromController(l.brightness, 255)
	if brightness != l.lastBrightness {
		data := map[string]any{
			"entity_id":  l.entityID,
			"brightness": brightness,
		}
		if err := l.client.CallService(ctx, "light", "turn_on", data); err != nil {
			return fmt.Errorf("light %s brightness stage: %w", l.entityID, err)
		}
		l.lastBrightness = brightness
	}

	l.dirty = false
	return nil
}

// currentColor returns the rescaled colour tuple for the active mode.
// HS results occupy the first two slots with the third zeroed.
func (l *Light) currentColor() [3]int {
	if l.mode == ColorModeRGB {
		return [3]int{
			fromController(l.red, 255),
			fromController(l.green, 255),
			fromController(l.blue, 255),
		}
	}
	return [3]int{
		fromController(l.hue, 360),
		fromController(l.saturation, 100),
		0,
	}
}

func (l *Light) logDebug(msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}
