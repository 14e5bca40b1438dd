// Package hass implements the Home Assistant REST API client for gray-surface.
//
// The bridge only needs a narrow slice of the API:
//
//   - GET  /api/states/{entity_id}            — read an entity's state
//   - POST /api/services/{domain}/{service}   — call a service
//   - GET  /api/                              — health check
//
// All requests use long-lived access token (bearer) authentication and a
// bounded per-request timeout. A 200 response is success; anything else is a
// failure with the body logged for diagnosis.
//
// Delivery is intentionally fire-once: there is no retry layer here. Targets
// that need retry semantics stay dirty and re-issue on their next execute
// cycle instead.
//
// # Usage
//
//	client := hass.New(cfg.HomeAssistant)
//	state, err := client.GetState(ctx, "switch.wavy_wub")
//	err = client.CallService(ctx, "switch", "toggle",
//	    map[string]any{"entity_id": "switch.wavy_wub"})
//
// # References
//
//   - Home Assistant REST API: https://developers.home-assistant.io/docs/api/rest/
package hass
