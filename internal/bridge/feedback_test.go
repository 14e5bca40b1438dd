package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestMonitor(t *testing.T, cfg MonitorConfig) (*Monitor, *fakeClock) {
	t.Helper()
	m, err := NewMonitor(cfg)
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}
	clk := newFakeClock()
	m.now = clk.Now
	return m, clk
}

func TestNewMonitorValidation(t *testing.T) {
	client := newMockClient()

	tests := []struct {
		name    string
		cfg     MonitorConfig
		wantErr error
	}{
		{"missing entity", MonitorConfig{Client: client}, ErrEntityRequired},
		{"missing client", MonitorConfig{EntityID: "switch.fan"}, ErrClientRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMonitor(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewMonitor() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMonitorInitialStateEmission(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "off"
	output := &mockOutput{}
	m, _ := newTestMonitor(t, MonitorConfig{
		EntityID: "switch.fan",
		Client:   client,
		Output:   output,
		Channel:  9,
		Note:     36,
	})

	if err := m.Invoke(context.Background()); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(output.signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(output.signals))
	}
	got := output.signals[0]
	if got.channel != 9 || got.note != 36 {
		t.Errorf("signal addressed to channel %d note %d, want 9/36", got.channel, got.note)
	}
	if got.signal != SignalSteadyOff {
		t.Errorf("signal = %v, want steady_off", got.signal)
	}
}

func TestMonitorPressThenConfirmation(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "off"
	output := &mockOutput{}
	m, clk := newTestMonitor(t, MonitorConfig{
		EntityID: "switch.fan",
		Client:   client,
		Output:   output,
	})
	ctx := context.Background()

	if err := m.Invoke(ctx); err != nil { // observe initial "off"
		t.Fatalf("Invoke() error = %v", err)
	}

	m.NotifyPressed()
	if m.LastSignal() != SignalTransitioning {
		t.Fatalf("signal after press = %v, want transitioning", m.LastSignal())
	}

	// Remote flips within the confirmation window.
	client.states["switch.fan"] = "on"
	clk.Advance(pendingMonitorCadence)
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if m.LastSignal() != SignalSteadyOn {
		t.Errorf("signal after confirmation = %v, want steady_on", m.LastSignal())
	}
	if m.pending {
		t.Error("pending = true after confirmation, want false")
	}
}

func TestMonitorPendingPollsFaster(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "off"
	m, clk := newTestMonitor(t, MonitorConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	fetches := client.getCalls

	// Idle: 50ms is inside the default window, no poll.
	clk.Advance(pendingMonitorCadence)
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if client.getCalls != fetches {
		t.Fatalf("idle monitor polled at 50ms, want 100ms cadence")
	}

	// Pending: 50ms is a full window.
	clk.Advance(pendingMonitorCadence)
	if err := m.Invoke(ctx); err != nil { // consume gate at 100ms
		t.Fatalf("Invoke() error = %v", err)
	}
	m.NotifyPressed()
	clk.Advance(pendingMonitorCadence)
	before := client.getCalls
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if client.getCalls != before+1 {
		t.Error("pending monitor did not poll at 50ms cadence")
	}
}

func TestMonitorConfirmationTimeout(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "off"
	output := &mockOutput{}
	m, clk := newTestMonitor(t, MonitorConfig{
		EntityID: "switch.fan",
		Client:   client,
		Output:   output,
	})
	ctx := context.Background()

	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	m.NotifyPressed()

	// Remote never changes; past the timeout the indicator reverts to
	// the actual state.
	clk.Advance(pendingTimeout + pendingMonitorCadence)
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if m.LastSignal() != SignalSteadyOff {
		t.Errorf("signal after timeout = %v, want steady_off", m.LastSignal())
	}
	if m.pending {
		t.Error("pending = true after timeout, want false")
	}
}

func TestMonitorExternalChange(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "off"
	m, clk := newTestMonitor(t, MonitorConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	// Someone flips the entity from the wall or the app.
	client.states["switch.fan"] = "on"
	clk.Advance(defaultMonitorCadence)
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if m.LastSignal() != SignalSteadyOn {
		t.Errorf("signal after external change = %v, want steady_on", m.LastSignal())
	}
	if m.pending {
		t.Error("pending = true after external change, want false")
	}
}

func TestMonitorFetchErrorPreservesState(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "on"
	m, clk := newTestMonitor(t, MonitorConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	m.NotifyPressed()

	client.stateErr = errors.New("boom")
	clk.Advance(pendingMonitorCadence)
	if err := m.Invoke(ctx); err == nil {
		t.Fatal("Invoke() error = nil, want fetch error")
	}

	if !m.pending {
		t.Error("pending = false after fetch error, want true")
	}
	if m.lastState != "on" {
		t.Errorf("lastState = %q after fetch error, want \"on\"", m.lastState)
	}

	// Recovery: the pending press can still confirm.
	client.stateErr = nil
	client.states["switch.fan"] = "off"
	clk.Advance(pendingMonitorCadence)
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if m.pending {
		t.Error("pending = true after recovered confirmation, want false")
	}
	if m.LastSignal() != SignalSteadyOff {
		t.Errorf("signal = %v, want steady_off", m.LastSignal())
	}
}

func TestMonitorNilOutput(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "on"
	m, _ := newTestMonitor(t, MonitorConfig{EntityID: "switch.fan", Client: client})

	if err := m.Invoke(context.Background()); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if m.LastSignal() != SignalSteadyOn {
		t.Errorf("LastSignal() = %v, want steady_on", m.LastSignal())
	}
}

func TestMonitorOutputErrorSwallowed(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "on"
	output := &mockOutput{err: errors.New("dead LED")}
	m, _ := newTestMonitor(t, MonitorConfig{
		EntityID: "switch.fan",
		Client:   client,
		Output:   output,
	})

	if err := m.Invoke(context.Background()); err != nil {
		t.Errorf("Invoke() error = %v, want nil despite output failure", err)
	}
	if m.lastState != "on" {
		t.Errorf("lastState = %q, want \"on\"", m.lastState)
	}
}

func TestSignalFor(t *testing.T) {
	tests := []struct {
		state string
		want  Signal
	}{
		{"on", SignalSteadyOn},
		{"off", SignalSteadyOff},
		{"unavailable", SignalSteadyOff},
		{"", SignalSteadyOff},
	}

	for _, tt := range tests {
		if got := signalFor(tt.state); got != tt.want {
			t.Errorf("signalFor(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}

// Pressing a switch that is off and seeing it confirm on covers the
// full optimistic cycle end to end.
func TestMonitorOptimisticCycleSignals(t *testing.T) {
	client := newMockClient()
	client.states["switch.fan"] = "off"
	output := &mockOutput{}
	m, clk := newTestMonitor(t, MonitorConfig{
		EntityID: "switch.fan",
		Client:   client,
		Output:   output,
		Channel:  9,
		Note:     36,
	})
	ctx := context.Background()

	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	m.NotifyPressed()
	clk.Advance(100 * time.Millisecond)
	client.states["switch.fan"] = "on"
	if err := m.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	want := []Signal{SignalSteadyOff, SignalTransitioning, SignalSteadyOn}
	if len(output.signals) != len(want) {
		t.Fatalf("signals = %d, want %d", len(output.signals), len(want))
	}
	for i, w := range want {
		if output.signals[i].signal != w {
			t.Errorf("signal[%d] = %v, want %v", i, output.signals[i].signal, w)
		}
	}
}
