package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for gray-surface.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Surface       SurfaceConfig       `yaml:"surface"`
	MIDI          MIDIConfig          `yaml:"midi"`
	HomeAssistant HomeAssistantConfig `yaml:"home_assistant"`
	MQTT          MQTTConfig          `yaml:"mqtt"`
	InfluxDB      InfluxDBConfig      `yaml:"influxdb"`
	Logging       LoggingConfig       `yaml:"logging"`
	Targets       []TargetConfig      `yaml:"targets"`
	Mappings      []MappingConfig     `yaml:"mappings"`
}

// SurfaceConfig contains the reconciliation loop timing settings.
type SurfaceConfig struct {
	// TickInterval is the scheduler quantum in milliseconds.
	// Default: 5 (200 Hz polling).
	TickInterval int `yaml:"tick_interval"`

	// ReconnectDelay is the fixed backoff in seconds between attempts
	// to reopen a dropped MIDI connection. Default: 2.
	ReconnectDelay int `yaml:"reconnect_delay"`
}

// MIDIConfig contains MIDI port settings.
type MIDIConfig struct {
	// InputPort is the name of the MIDI input port to open. Required.
	InputPort string `yaml:"input_port"`

	// OutputPort is the name of the MIDI output port used for LED
	// feedback. Empty disables all LED signalling.
	OutputPort string `yaml:"output_port"`

	// BufferSize is the number of pending input events buffered between
	// ticks. Default: 256.
	BufferSize int `yaml:"buffer_size"`
}

// HomeAssistantConfig contains Home Assistant REST API settings.
type HomeAssistantConfig struct {
	// URL is the base URI, e.g. "http://homeassistant.local:8123".
	URL string `yaml:"url"`

	// Token is the long-lived access token. Prefer setting it via the
	// GRAYSURFACE_HASS_TOKEN environment variable.
	Token string `yaml:"token"`

	// Timeout is the per-request timeout in seconds. Default: 5.
	Timeout int `yaml:"timeout"`
}

// MQTTConfig contains MQTT broker connection settings for health reporting.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// HealthInterval is how often bridge health is published, in seconds.
	// Default: 30.
	HealthInterval int `yaml:"health_interval"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB telemetry settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TargetConfig declares a controllable Home Assistant entity fed by one or
// more input mappings.
type TargetConfig struct {
	// ID is the mapping-table key for this target. Required, unique.
	ID string `yaml:"id"`

	// EntityID is the Home Assistant entity, e.g. "light.lightbar". Required.
	EntityID string `yaml:"entity_id"`

	// Type selects the target behaviour: "light" or "toggle".
	Type string `yaml:"type"`

	// Domain is the service domain used by toggle targets ("switch" or
	// "light"). Default: "switch". Ignored for lights.
	Domain string `yaml:"domain"`

	// ColorMode selects the initial colour payload for lights: "hs" or "rgb".
	// Default: "hs".
	ColorMode string `yaml:"color_mode"`

	// SendPolicy selects how lights issue service calls: "combined" (one
	// call carrying brightness and colour) or "two_stage" (separate
	// colour-only then brightness-only calls, for devices that reject
	// combined updates). Default: "combined".
	SendPolicy string `yaml:"send_policy"`

	// Cadence is the minimum interval between execute cycles, in
	// milliseconds. Default: 1000 for lights, 5 for toggles.
	Cadence int `yaml:"cadence"`

	// Feedback enables LED state feedback for this target.
	Feedback *FeedbackConfig `yaml:"feedback"`
}

// FeedbackConfig declares the LED used to acknowledge a target's state.
type FeedbackConfig struct {
	// Channel is the 1-based MIDI channel of the LED note.
	Channel uint8 `yaml:"channel"`

	// Note is the MIDI note number whose velocity drives the LED colour.
	Note uint8 `yaml:"note"`
}

// MappingConfig binds a physical input identifier to a target attribute.
type MappingConfig struct {
	// Target references a TargetConfig.ID. Required.
	Target string `yaml:"target"`

	// Channel is the 1-based MIDI channel. Required.
	Channel uint8 `yaml:"channel"`

	// Number is the controller number (for cc) or note number (for note).
	Number uint8 `yaml:"number"`

	// Kind is the message kind: "cc" or "note". Default: "cc".
	Kind string `yaml:"kind"`

	// Attribute names the target attribute this input feeds: "brightness",
	// "hue", "saturation", "red", "green", "blue", or "button".
	Attribute string `yaml:"attribute"`
}

// Valid enum values used during validation.
var (
	validTargetTypes  = map[string]bool{"light": true, "toggle": true}
	validDomains      = map[string]bool{"switch": true, "light": true}
	validColorModes   = map[string]bool{"hs": true, "rgb": true}
	validSendPolicies = map[string]bool{"combined": true, "two_stage": true}
	validKinds        = map[string]bool{"cc": true, "note": true}
	validAttributes   = map[string]bool{
		"brightness": true, "hue": true, "saturation": true,
		"red": true, "green": true, "blue": true, "button": true,
	}
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYSURFACE_SECTION_KEY
// For example: GRAYSURFACE_HASS_TOKEN, GRAYSURFACE_MIDI_INPUT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyTargetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Surface: SurfaceConfig{
			TickInterval:   5,
			ReconnectDelay: 2,
		},
		MIDI: MIDIConfig{
			BufferSize: 256,
		},
		HomeAssistant: HomeAssistantConfig{
			URL:     "http://homeassistant.local:8123",
			Timeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graysurface",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
			HealthInterval: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYSURFACE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Home Assistant
	if v := os.Getenv("GRAYSURFACE_HASS_URL"); v != "" {
		cfg.HomeAssistant.URL = v
	}
	if v := os.Getenv("GRAYSURFACE_HASS_TOKEN"); v != "" {
		cfg.HomeAssistant.Token = v
	}

	// MIDI
	if v := os.Getenv("GRAYSURFACE_MIDI_INPUT"); v != "" {
		cfg.MIDI.InputPort = v
	}
	if v := os.Getenv("GRAYSURFACE_MIDI_OUTPUT"); v != "" {
		cfg.MIDI.OutputPort = v
	}

	// MQTT
	if v := os.Getenv("GRAYSURFACE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYSURFACE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYSURFACE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYSURFACE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// applyTargetDefaults fills per-target defaults that depend on the target type.
func applyTargetDefaults(cfg *Config) {
	for i := range cfg.Targets {
		t := &cfg.Targets[i]
		if t.Type == "" {
			t.Type = "light"
		}
		if t.ColorMode == "" {
			t.ColorMode = "hs"
		}
		if t.SendPolicy == "" {
			t.SendPolicy = "combined"
		}
		if t.Domain == "" {
			t.Domain = "switch"
		}
		if t.Cadence == 0 {
			switch t.Type {
			case "toggle":
				t.Cadence = 5
			default:
				t.Cadence = 1000
			}
		}
	}
	for i := range cfg.Mappings {
		if cfg.Mappings[i].Kind == "" {
			cfg.Mappings[i].Kind = "cc"
		}
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Home Assistant validation - token is REQUIRED. Without it every
	// outbound state request would fail with 401, so refuse to start.
	if c.HomeAssistant.URL == "" {
		errs = append(errs, "home_assistant.url is required")
	}
	if c.HomeAssistant.Token == "" {
		errs = append(errs, "home_assistant.token is required (set GRAYSURFACE_HASS_TOKEN environment variable)")
	}

	// MIDI validation
	if c.MIDI.InputPort == "" {
		errs = append(errs, "midi.input_port is required (set GRAYSURFACE_MIDI_INPUT environment variable)")
	}

	// Loop timing validation
	if c.Surface.TickInterval <= 0 {
		errs = append(errs, "surface.tick_interval must be positive")
	}
	if c.Surface.ReconnectDelay <= 0 {
		errs = append(errs, "surface.reconnect_delay must be positive")
	}

	// MQTT validation
	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	errs = append(errs, c.validateTargets()...)
	errs = append(errs, c.validateMappings()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validateTargets checks the target table for errors.
func (c *Config) validateTargets() []string {
	var errs []string

	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.ID == "" {
			errs = append(errs, fmt.Sprintf("targets[%d].id is required", i))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Sprintf("targets[%d].id %q is duplicated", i, t.ID))
		}
		seen[t.ID] = true

		if t.EntityID == "" {
			errs = append(errs, fmt.Sprintf("target %q: entity_id is required", t.ID))
		}
		if !validTargetTypes[t.Type] {
			errs = append(errs, fmt.Sprintf("target %q: type must be \"light\" or \"toggle\"", t.ID))
		}
		if !validDomains[t.Domain] {
			errs = append(errs, fmt.Sprintf("target %q: domain must be \"switch\" or \"light\"", t.ID))
		}
		if !validColorModes[t.ColorMode] {
			errs = append(errs, fmt.Sprintf("target %q: color_mode must be \"hs\" or \"rgb\"", t.ID))
		}
		if !validSendPolicies[t.SendPolicy] {
			errs = append(errs, fmt.Sprintf("target %q: send_policy must be \"combined\" or \"two_stage\"", t.ID))
		}
		if t.Cadence < 0 {
			errs = append(errs, fmt.Sprintf("target %q: cadence must not be negative", t.ID))
		}
	}

	return errs
}

// validateMappings checks the mapping table for errors.
func (c *Config) validateMappings() []string {
	var errs []string

	targetIDs := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		targetIDs[t.ID] = true
	}

	for i, m := range c.Mappings {
		if m.Target == "" {
			errs = append(errs, fmt.Sprintf("mappings[%d].target is required", i))
			continue
		}
		if !targetIDs[m.Target] {
			errs = append(errs, fmt.Sprintf("mappings[%d]: unknown target %q", i, m.Target))
		}
		if m.Channel < 1 || m.Channel > 16 {
			errs = append(errs, fmt.Sprintf("mappings[%d]: channel must be 1-16", i))
		}
		if m.Number > 127 {
			errs = append(errs, fmt.Sprintf("mappings[%d]: number must be 0-127", i))
		}
		if !validKinds[m.Kind] {
			errs = append(errs, fmt.Sprintf("mappings[%d]: kind must be \"cc\" or \"note\"", i))
		}
		if !validAttributes[m.Attribute] {
			errs = append(errs, fmt.Sprintf("mappings[%d]: unknown attribute %q", i, m.Attribute))
		}
	}

	return errs
}

// GetTickInterval returns the scheduler quantum as a Duration.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Surface.TickInterval) * time.Millisecond
}

// GetReconnectDelay returns the MIDI reconnect backoff as a Duration.
func (c *Config) GetReconnectDelay() time.Duration {
	return time.Duration(c.Surface.ReconnectDelay) * time.Second
}

// GetRequestTimeout returns the Home Assistant request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.HomeAssistant.Timeout) * time.Second
}

// GetHealthInterval returns the MQTT health publish interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.MQTT.HealthInterval) * time.Second
}

// GetCadence returns a target's execute cadence as a Duration.
func (t TargetConfig) GetCadence() time.Duration {
	return time.Duration(t.Cadence) * time.Millisecond
}
