// Package mqtt provides MQTT connectivity for gray-surface's health
// and status reporting.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The bridge is a pure publisher: it announces its presence and
// periodic health so the rest of the home-automation estate can alarm
// when the surface goes dark. It subscribes to nothing; commands flow
// over HTTP to Home Assistant, not over the bus.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Publish(mqtt.Topics{}.SystemHealth(), payload, 1, true)
package mqtt
