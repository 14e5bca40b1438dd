// Package config handles loading and validating gray-surface configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The configuration also carries the target and mapping tables: which Home
// Assistant entities the surface controls, and which physical knob, fader,
// or button feeds which target attribute.
//
// Security Considerations:
//   - Sensitive values (the Home Assistant token, MQTT credentials) should
//     be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.HomeAssistant.URL)
package config
