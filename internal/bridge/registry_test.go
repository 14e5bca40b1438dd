package bridge

import "testing"

func TestRegistryDispatch(t *testing.T) {
	light := &fakeTarget{id: "light.desk"}
	toggle := &fakeTarget{id: "switch.fan"}

	r := NewRegistry()
	r.AddMapping(Mapping{Channel: 9, Identifier: 13, Kind: MapControlChange, Target: light, Attribute: AttrBrightness})
	r.AddMapping(Mapping{Channel: 9, Identifier: 29, Kind: MapControlChange, Target: light, Attribute: AttrHue})
	r.AddMapping(Mapping{Channel: 9, Identifier: 36, Kind: MapNote, Target: toggle, Attribute: AttrButton})

	tests := []struct {
		name        string
		event       InputEvent
		wantMatched int
	}{
		{"mapped cc", InputEvent{Channel: 9, Identifier: 13, Kind: ControlChange, Value: 100}, 1},
		{"wrong channel", InputEvent{Channel: 1, Identifier: 13, Kind: ControlChange, Value: 100}, 0},
		{"wrong identifier", InputEvent{Channel: 9, Identifier: 99, Kind: ControlChange, Value: 100}, 0},
		{"note does not match cc mapping", InputEvent{Channel: 9, Identifier: 13, Kind: NoteOn, Value: 100}, 0},
		{"note on matches note mapping", InputEvent{Channel: 9, Identifier: 36, Kind: NoteOn, Value: 127}, 1},
		{"note off matches note mapping", InputEvent{Channel: 9, Identifier: 36, Kind: NoteOff, Value: 0}, 1},
		{"cc does not match note mapping", InputEvent{Channel: 9, Identifier: 36, Kind: ControlChange, Value: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Dispatch(tt.event); got != tt.wantMatched {
				t.Errorf("Dispatch() = %d, want %d", got, tt.wantMatched)
			}
		})
	}
}

func TestRegistryDispatchUpdatesTarget(t *testing.T) {
	light := &fakeTarget{id: "light.desk"}

	r := NewRegistry()
	r.AddMapping(Mapping{Channel: 9, Identifier: 13, Kind: MapControlChange, Target: light, Attribute: AttrBrightness})

	r.Dispatch(InputEvent{Channel: 9, Identifier: 13, Kind: ControlChange, Value: 77})

	if len(light.updates) != 1 {
		t.Fatalf("target updates = %d, want 1", len(light.updates))
	}
	if light.updates[0].attribute != AttrBrightness || light.updates[0].value != 77 {
		t.Errorf("Update(%q, %d), want Update(%q, 77)",
			light.updates[0].attribute, light.updates[0].value, AttrBrightness)
	}
}

func TestRegistryDeduplicatesTargets(t *testing.T) {
	light := &fakeTarget{id: "light.desk"}

	r := NewRegistry()
	r.AddMapping(Mapping{Channel: 9, Identifier: 13, Kind: MapControlChange, Target: light, Attribute: AttrBrightness})
	r.AddMapping(Mapping{Channel: 9, Identifier: 29, Kind: MapControlChange, Target: light, Attribute: AttrHue})
	r.AddMapping(Mapping{Channel: 9, Identifier: 49, Kind: MapControlChange, Target: light, Attribute: AttrSaturation})

	if got := len(r.Targets()); got != 1 {
		t.Errorf("Targets() length = %d, want 1", got)
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	first := &fakeTarget{id: "light.first"}
	second := &fakeTarget{id: "light.second"}

	r := NewRegistry()
	r.AddMapping(Mapping{Channel: 1, Identifier: 1, Kind: MapControlChange, Target: first, Attribute: AttrBrightness})
	r.AddMapping(Mapping{Channel: 1, Identifier: 2, Kind: MapControlChange, Target: second, Attribute: AttrBrightness})
	r.AddMapping(Mapping{Channel: 1, Identifier: 3, Kind: MapControlChange, Target: first, Attribute: AttrHue})

	targets := r.Targets()
	if len(targets) != 2 {
		t.Fatalf("Targets() length = %d, want 2", len(targets))
	}
	if targets[0].EntityID() != "light.first" || targets[1].EntityID() != "light.second" {
		t.Errorf("Targets() order = [%s, %s], want [light.first, light.second]",
			targets[0].EntityID(), targets[1].EntityID())
	}
}

func TestRegistryMonitors(t *testing.T) {
	client := newMockClient()
	m, err := NewMonitor(MonitorConfig{EntityID: "switch.fan", Client: client})
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}

	r := NewRegistry()
	r.AddMonitor(m)

	if got := len(r.Monitors()); got != 1 {
		t.Errorf("Monitors() length = %d, want 1", got)
	}
}
