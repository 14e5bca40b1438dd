package bridge

import (
	"context"
	"fmt"
	"time"
)

// ToggleConfig configures a Toggle target.
type ToggleConfig struct {
	// EntityID is the remote entity (e.g. "switch.fan").
	EntityID string

	// Domain is the service domain to toggle in ("switch" or "light").
	// Default "switch".
	Domain string

	// Client performs the outbound service calls.
	Client StateClient

	// Cadence is the minimum interval between toggle attempts.
	// Default 5ms, effectively one attempt per tick.
	Cadence time.Duration

	// OnPress is an optional hook fired on the rising edge, before
	// any outbound request. Used to notify a feedback monitor that a
	// press happened.
	OnPress func()

	// Logger is optional.
	Logger Logger
}

// Toggle flips a binary entity on button presses. Only the rising
// edge (release → press) arms a toggle; holding the button or the
// release event does nothing, so one press is one flip.
type Toggle struct {
	entityID string
	domain   string
	client   StateClient
	gate     Gate
	onPress  func()
	logger   Logger

	// level is the last observed binary input level (0 or 1).
	level uint8

	// armed is set on a rising edge and cleared after the next toggle
	// attempt, successful or not. Retrying a stale press seconds later
	// would surprise the user more than a single lost toggle.
	armed bool

	now func() time.Time
}

// NewToggle builds a Toggle from config, applying defaults.
func NewToggle(cfg ToggleConfig) (*Toggle, error) {
	if cfg.EntityID == "" {
		return nil, ErrEntityRequired
	}
	if cfg.Client == nil {
		return nil, ErrClientRequired
	}
	domain := cfg.Domain
	if domain == "" {
		domain = "switch"
	}
	cadence := cfg.Cadence
	if cadence == 0 {
		cadence = 5 * time.Millisecond
	}
	return &Toggle{
		entityID: cfg.EntityID,
		domain:   domain,
		client:   cfg.Client,
		gate:     Gate{Cadence: cadence},
		onPress:  cfg.OnPress,
		logger:   cfg.Logger,
		now:      time.Now,
	}, nil
}

// EntityID returns the remote entity this toggle drives.
func (t *Toggle) EntityID() string {
	return t.entityID
}

// Update records the button level. Any nonzero value is a press;
// zero is a release. A rising edge arms exactly one toggle attempt
// and fires the OnPress hook.
func (t *Toggle) Update(attribute string, value uint8) {
	if attribute != AttrButton {
		t.logDebug("ignoring unknown attribute", "attribute", attribute)
		return
	}
	level := uint8(0)
	if value > 0 {
		level = 1
	}
	if t.level == 0 && level == 1 {
		t.armed = true
		if t.onPress != nil {
			t.onPress()
		}
	}
	t.level = level
}

// Invoke sends one toggle request if a press armed it and the cadence
// window has elapsed. The armed flag clears regardless of outcome.
func (t *Toggle) Invoke(ctx context.Context) error {
	if !t.armed {
		return nil
	}
	if !t.gate.Ready(t.now()) {
		return nil
	}
	t.armed = false
	data := map[string]any{"entity_id": t.entityID}
	if err := t.client.CallService(ctx, t.domain, "toggle", data); err != nil {
		return fmt.Errorf("toggle %s: %w", t.entityID, err)
	}
	return nil
}

func (t *Toggle) logDebug(msg string, keysAndValues ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, keysAndValues...)
	}
}
