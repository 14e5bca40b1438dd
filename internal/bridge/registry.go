package bridge

// MappingKind selects which message kinds a mapping matches.
type MappingKind uint8

const (
	// MapControlChange matches ControlChange events only.
	MapControlChange MappingKind = iota

	// MapNote matches both NoteOn and NoteOff events, so a button
	// mapping sees presses and releases through one entry.
	MapNote
)

// Mapping binds one physical control to one attribute of one target.
// Channel is 1-based; Identifier is the controller or note number.
type Mapping struct {
	Channel    uint8
	Identifier uint8
	Kind       MappingKind
	Target     Target
	Attribute  string
}

// matches reports whether this mapping applies to the event.
func (m Mapping) matches(ev InputEvent) bool {
	if ev.Channel != m.Channel || ev.Identifier != m.Identifier {
		return false
	}
	switch m.Kind {
	case MapControlChange:
		return ev.Kind == ControlChange
	case MapNote:
		return ev.Kind == NoteOn || ev.Kind == NoteOff
	default:
		return false
	}
}

// Registry holds the mapping table plus the distinct sets of targets
// and monitors the loop services each tick.
//
// Targets are deduplicated at registration in first-seen order, so a
// target mapped to several controls is still invoked exactly once per
// tick. Registry is populated during startup and read-only afterwards;
// it needs no locking.
type Registry struct {
	mappings []Mapping
	targets  []Target
	monitors []*Monitor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddMapping registers a control binding. The mapping's target joins
// the invoke set if it is not already present.
func (r *Registry) AddMapping(m Mapping) {
	r.mappings = append(r.mappings, m)
	for _, t := range r.targets {
		if t == m.Target {
			return
		}
	}
	r.targets = append(r.targets, m.Target)
}

// AddMonitor registers a feedback monitor for per-tick servicing.
func (r *Registry) AddMonitor(m *Monitor) {
	r.monitors = append(r.monitors, m)
}

// Dispatch applies an input event to every matching mapping and
// returns how many matched. Zero means the event is unmapped.
func (r *Registry) Dispatch(ev InputEvent) int {
	matched := 0
	for _, m := range r.mappings {
		if m.matches(ev) {
			m.Target.Update(m.Attribute, ev.Value)
			matched++
		}
	}
	return matched
}

// Targets returns the distinct targets in registration order.
func (r *Registry) Targets() []Target {
	return r.targets
}

// Monitors returns the registered monitors in registration order.
func (r *Registry) Monitors() []*Monitor {
	return r.monitors
}
