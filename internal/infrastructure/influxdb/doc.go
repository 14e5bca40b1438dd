// Package influxdb provides optional telemetry storage for gray-surface.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes, and health monitoring.
//
// # Purpose
//
// This package records how the bridge behaves over time:
//   - Input event bursts per scheduler tick
//   - Outbound service-call outcomes and latency per entity
//
// A week of this data answers the questions that matter when a fader
// feels laggy: is Home Assistant slow, is the surface flooding, or is
// one lamp's firmware timing out.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.RecordServiceCall("light.office", "light.turn_on", true, 42*time.Millisecond)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a
// callback. Connection and health check errors are returned directly.
package influxdb
