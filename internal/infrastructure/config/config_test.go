package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `
midi:
  input_port: "Launch Control XL"
home_assistant:
  url: "http://homeassistant.local:8123"
  token: "test-token"
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Defaults applied
	if cfg.Surface.TickInterval != 5 {
		t.Errorf("tick_interval = %d, want default 5", cfg.Surface.TickInterval)
	}
	if cfg.Surface.ReconnectDelay != 2 {
		t.Errorf("reconnect_delay = %d, want default 2", cfg.Surface.ReconnectDelay)
	}
	if cfg.HomeAssistant.Timeout != 5 {
		t.Errorf("timeout = %d, want default 5", cfg.HomeAssistant.Timeout)
	}
	if cfg.MIDI.BufferSize != 256 {
		t.Errorf("buffer_size = %d, want default 256", cfg.MIDI.BufferSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want default \"info\"", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MissingToken(t *testing.T) {
	content := `
midi:
  input_port: "Launch Control XL"
home_assistant:
  url: "http://homeassistant.local:8123"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected validation error for missing token")
	}
	if !strings.Contains(err.Error(), "home_assistant.token") {
		t.Errorf("error %q should mention home_assistant.token", err)
	}
}

func TestLoad_MissingInputPort(t *testing.T) {
	content := `
home_assistant:
  url: "http://homeassistant.local:8123"
  token: "test-token"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected validation error for missing input port")
	}
	if !strings.Contains(err.Error(), "midi.input_port") {
		t.Errorf("error %q should mention midi.input_port", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRAYSURFACE_HASS_TOKEN", "env-token")
	t.Setenv("GRAYSURFACE_MIDI_INPUT", "env-port")

	content := `
home_assistant:
  url: "http://homeassistant.local:8123"
  token: "file-token"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HomeAssistant.Token != "env-token" {
		t.Errorf("token = %q, want env override \"env-token\"", cfg.HomeAssistant.Token)
	}
	if cfg.MIDI.InputPort != "env-port" {
		t.Errorf("input_port = %q, want env override \"env-port\"", cfg.MIDI.InputPort)
	}
}

func TestLoad_TargetsAndMappings(t *testing.T) {
	content := minimalConfig + `
targets:
  - id: tripod
    entity_id: light.orange_tripod
    type: light
    color_mode: rgb
    send_policy: two_stage
  - id: wavy
    entity_id: switch.wavy_wub
    type: toggle
    feedback:
      channel: 1
      note: 36
mappings:
  - target: tripod
    channel: 1
    number: 14
    attribute: red
  - target: wavy
    channel: 1
    number: 36
    kind: note
    attribute: button
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Targets) != 2 {
		t.Fatalf("targets = %d, want 2", len(cfg.Targets))
	}

	tripod := cfg.Targets[0]
	if tripod.Cadence != 1000 {
		t.Errorf("light cadence = %d, want default 1000", tripod.Cadence)
	}
	if tripod.SendPolicy != "two_stage" {
		t.Errorf("send_policy = %q, want \"two_stage\"", tripod.SendPolicy)
	}

	wavy := cfg.Targets[1]
	if wavy.Cadence != 5 {
		t.Errorf("toggle cadence = %d, want default 5", wavy.Cadence)
	}
	if wavy.Domain != "switch" {
		t.Errorf("domain = %q, want default \"switch\"", wavy.Domain)
	}
	if wavy.Feedback == nil || wavy.Feedback.Note != 36 {
		t.Errorf("feedback = %+v, want note 36", wavy.Feedback)
	}

	if cfg.Mappings[0].Kind != "cc" {
		t.Errorf("mapping kind = %q, want default \"cc\"", cfg.Mappings[0].Kind)
	}
}

func TestValidate_TargetErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "duplicate target id",
			yaml: `
targets:
  - id: a
    entity_id: light.one
  - id: a
    entity_id: light.two
`,
			wantErr: "duplicated",
		},
		{
			name: "missing entity id",
			yaml: `
targets:
  - id: a
`,
			wantErr: "entity_id is required",
		},
		{
			name: "bad color mode",
			yaml: `
targets:
  - id: a
    entity_id: light.one
    color_mode: cmyk
`,
			wantErr: "color_mode",
		},
		{
			name: "mapping to unknown target",
			yaml: `
mappings:
  - target: ghost
    channel: 1
    number: 10
    attribute: brightness
`,
			wantErr: "unknown target",
		},
		{
			name: "mapping bad attribute",
			yaml: `
targets:
  - id: a
    entity_id: light.one
mappings:
  - target: a
    channel: 1
    number: 10
    attribute: warp
`,
			wantErr: "unknown attribute",
		},
		{
			name: "mapping channel out of range",
			yaml: `
targets:
  - id: a
    entity_id: light.one
mappings:
  - target: a
    channel: 17
    number: 10
    attribute: brightness
`,
			wantErr: "channel must be 1-16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, minimalConfig+tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetDurations(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.GetTickInterval().Milliseconds(); got != 5 {
		t.Errorf("GetTickInterval = %dms, want 5ms", got)
	}
	if got := cfg.GetReconnectDelay().Seconds(); got != 2 {
		t.Errorf("GetReconnectDelay = %gs, want 2s", got)
	}
}
