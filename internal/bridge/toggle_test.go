package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestToggle(t *testing.T, cfg ToggleConfig) (*Toggle, *fakeClock) {
	t.Helper()
	tg, err := NewToggle(cfg)
	if err != nil {
		t.Fatalf("NewToggle() error = %v", err)
	}
	clk := newFakeClock()
	tg.now = clk.Now
	return tg, clk
}

func TestNewToggleValidation(t *testing.T) {
	client := newMockClient()

	tests := []struct {
		name    string
		cfg     ToggleConfig
		wantErr error
	}{
		{"missing entity", ToggleConfig{Client: client}, ErrEntityRequired},
		{"missing client", ToggleConfig{EntityID: "switch.fan"}, ErrClientRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewToggle(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewToggle() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestToggleRisingEdgeFiresOnce(t *testing.T) {
	client := newMockClient()
	tg, _ := newTestToggle(t, ToggleConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	tg.Update(AttrButton, 127)
	if err := tg.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(client.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(client.calls))
	}
	call := client.calls[0]
	if call.domain != "switch" || call.service != "toggle" {
		t.Errorf("called %s.%s, want switch.toggle", call.domain, call.service)
	}
	if call.data["entity_id"] != "switch.fan" {
		t.Errorf("entity_id = %v, want switch.fan", call.data["entity_id"])
	}

	// The press already fired; further invokes do nothing.
	if err := tg.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(client.calls) != 1 {
		t.Errorf("calls = %d after second invoke, want 1", len(client.calls))
	}
}

func TestToggleHoldDoesNotRearm(t *testing.T) {
	client := newMockClient()
	tg, clk := newTestToggle(t, ToggleConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	tg.Update(AttrButton, 127)
	if err := tg.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	// Held button keeps reporting nonzero values.
	for i := 0; i < 5; i++ {
		clk.Advance(10 * time.Millisecond)
		tg.Update(AttrButton, 127)
		if err := tg.Invoke(ctx); err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
	}
	if len(client.calls) != 1 {
		t.Errorf("calls = %d while held, want 1", len(client.calls))
	}
}

func TestToggleReleaseThenPressRearms(t *testing.T) {
	client := newMockClient()
	tg, clk := newTestToggle(t, ToggleConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	tg.Update(AttrButton, 127)
	if err := tg.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	tg.Update(AttrButton, 0) // release
	clk.Advance(10 * time.Millisecond)
	tg.Update(AttrButton, 127) // second press
	if err := tg.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(client.calls) != 2 {
		t.Errorf("calls = %d after release and re-press, want 2", len(client.calls))
	}
}

func TestToggleClearsArmAfterFailure(t *testing.T) {
	client := newMockClient()
	tg, clk := newTestToggle(t, ToggleConfig{EntityID: "switch.fan", Client: client})
	ctx := context.Background()

	client.callErr = errors.New("boom")
	tg.Update(AttrButton, 127)
	if err := tg.Invoke(ctx); err == nil {
		t.Fatal("Invoke() error = nil, want error")
	}

	// A failed attempt is not retried later; stale toggles surprise.
	client.callErr = nil
	clk.Advance(time.Second)
	if err := tg.Invoke(ctx); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("calls = %d after failed press, want 0", len(client.calls))
	}
}

func TestToggleLightDomain(t *testing.T) {
	client := newMockClient()
	tg, _ := newTestToggle(t, ToggleConfig{EntityID: "light.hall", Domain: "light", Client: client})

	tg.Update(AttrButton, 1)
	if err := tg.Invoke(context.Background()); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if client.calls[0].domain != "light" {
		t.Errorf("domain = %s, want light", client.calls[0].domain)
	}
}

func TestToggleOnPressHook(t *testing.T) {
	client := newMockClient()
	pressed := 0
	tg, _ := newTestToggle(t, ToggleConfig{
		EntityID: "switch.fan",
		Client:   client,
		OnPress:  func() { pressed++ },
	})

	tg.Update(AttrButton, 127)
	tg.Update(AttrButton, 127) // hold
	tg.Update(AttrButton, 0)   // release
	tg.Update(AttrButton, 64)  // second press

	if pressed != 2 {
		t.Errorf("OnPress fired %d times, want 2", pressed)
	}
}

func TestToggleIgnoresNonButtonAttribute(t *testing.T) {
	client := newMockClient()
	tg, _ := newTestToggle(t, ToggleConfig{EntityID: "switch.fan", Client: client})

	tg.Update(AttrBrightness, 127)
	if err := tg.Invoke(context.Background()); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(client.calls) != 0 {
		t.Errorf("calls = %d after non-button attribute, want 0", len(client.calls))
	}
}
