package bridge

import (
	"context"
	"fmt"
	"time"
)

// Monitor polling and confirmation defaults.
const (
	// defaultMonitorCadence is the idle polling interval.
	defaultMonitorCadence = 100 * time.Millisecond

	// pendingMonitorCadence is the polling interval while a press
	// awaits confirmation. Faster polling shortens the window between
	// the remote change and the LED acknowledging it.
	pendingMonitorCadence = 50 * time.Millisecond

	// pendingTimeout bounds how long a press stays unconfirmed before
	// the indicator reverts to the actual remote state.
	pendingTimeout = 3 * time.Second
)

// MonitorConfig configures a feedback Monitor.
type MonitorConfig struct {
	// EntityID is the remote entity whose state is mirrored.
	EntityID string

	// Client fetches the remote state.
	Client StateClient

	// Output receives the acknowledgement signals. Nil disables
	// emission; the monitor still tracks state.
	Output SignalOutput

	// Channel and Note address the indicator on the surface.
	Channel uint8
	Note    uint8

	// Logger is optional.
	Logger Logger
}

// Monitor mirrors one remote entity's state onto a surface indicator
// and arbitrates between optimistic and confirmed state.
//
// A press (NotifyPressed) immediately shows the transitioning signal
// and enters the pending phase: polling speeds up and the next
// observed state change is treated as confirmation of the press. If
// nothing changes within the timeout, the indicator reverts to
// whatever the remote actually reports. Changes observed while not
// pending are external (wall switch, app) and are mirrored directly.
type Monitor struct {
	entityID string
	client   StateClient
	output   SignalOutput
	channel  uint8
	note     uint8
	logger   Logger

	gate Gate

	lastState string
	hasState  bool

	pending      bool
	pendingSince time.Time

	lastSignal Signal

	now func() time.Time
}

// NewMonitor builds a Monitor from config.
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if cfg.EntityID == "" {
		return nil, ErrEntityRequired
	}
	if cfg.Client == nil {
		return nil, ErrClientRequired
	}
	return &Monitor{
		entityID: cfg.EntityID,
		client:   cfg.Client,
		output:   cfg.Output,
		channel:  cfg.Channel,
		note:     cfg.Note,
		logger:   cfg.Logger,
		gate:     Gate{Cadence: defaultMonitorCadence},
		now:      time.Now,
	}, nil
}

// EntityID returns the entity this monitor mirrors.
func (m *Monitor) EntityID() string {
	return m.entityID
}

// LastSignal returns the most recently emitted signal.
func (m *Monitor) LastSignal() Signal {
	return m.lastSignal
}

// NotifyPressed records an optimistic press: the indicator shows the
// transitioning signal and the monitor enters the pending phase.
// Called synchronously from the mapped toggle's rising edge.
func (m *Monitor) NotifyPressed() {
	m.emit(SignalTransitioning)
	m.pending = true
	m.pendingSince = m.now()
	m.logDebug("press pending confirmation", "entity_id", m.entityID)
}

// Invoke polls the remote state if the cadence window has elapsed and
// reconciles the indicator against it.
func (m *Monitor) Invoke(ctx context.Context) error {
	if m.pending {
		m.gate.Cadence = pendingMonitorCadence
	} else {
		m.gate.Cadence = defaultMonitorCadence
	}
	now := m.now()
	if !m.gate.Ready(now) {
		return nil
	}

	state, err := m.client.GetState(ctx, m.entityID)
	if err != nil {
		// Tracking state is untouched; a pending press can still be
		// confirmed by a later successful poll.
		return fmt.Errorf("monitor %s: %w", m.entityID, err)
	}

	switch {
	case !m.hasState:
		m.hasState = true
		m.lastState = state
		m.emit(signalFor(state))
		m.logDebug("initial state observed", "entity_id", m.entityID, "state", state)

	case state != m.lastState:
		m.lastState = state
		m.emit(signalFor(state))
		if m.pending {
			m.pending = false
			m.logDebug("state change confirmed", "entity_id", m.entityID, "state", state)
		} else {
			m.logInfo("external state change", "entity_id", m.entityID, "state", state)
		}

	case m.pending && now.Sub(m.pendingSince) > pendingTimeout:
		m.pending = false
		m.emit(signalFor(state))
		m.logWarn("confirmation timeout, reverting indicator",
			"entity_id", m.entityID, "state", state)
	}

	return nil
}

// emit pushes a signal to the output. Output errors are logged and
// swallowed; a dead LED must not disturb state tracking.
func (m *Monitor) emit(signal Signal) {
	m.lastSignal = signal
	if m.output == nil {
		return
	}
	if err := m.output.SetSignal(m.channel, m.note, signal); err != nil {
		m.logDebug("signal emission failed",
			"entity_id", m.entityID, "signal", signal.String(), "error", err)
	}
}

// signalFor maps a remote state string to an indicator signal.
// Anything that is not "on" (including "unavailable") shows as off.
func signalFor(state string) Signal {
	if state == "on" {
		return SignalSteadyOn
	}
	return SignalSteadyOff
}

func (m *Monitor) logDebug(msg string, keysAndValues ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, keysAndValues...)
	}
}

func (m *Monitor) logInfo(msg string, keysAndValues ...any) {
	if m.logger != nil {
		m.logger.Info(msg, keysAndValues...)
	}
}

func (m *Monitor) logWarn(msg string, keysAndValues ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, keysAndValues...)
	}
}
