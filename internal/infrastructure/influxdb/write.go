package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordInput writes the number of surface events drained in one
// scheduler tick. Only ticks with activity are recorded, so the
// series measures burst intensity rather than idle time.
//
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) RecordInput(count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"surface_input",
		nil,
		map[string]interface{}{
			"events": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordServiceCall writes the outcome and latency of one outbound
// state-change request.
//
// Parameters:
//   - entityID: The remote entity addressed (e.g. "light.office")
//   - service: The qualified service name (e.g. "light.turn_on")
//   - ok: Whether the request succeeded
//   - elapsed: Round-trip time of the request
func (c *Client) RecordServiceCall(entityID, service string, ok bool, elapsed time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"service_calls",
		map[string]string{
			"entity_id": entityID,
			"service":   service,
		},
		map[string]interface{}{
			"ok":         ok,
			"latency_ms": float64(elapsed.Microseconds()) / 1000.0,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Example:
//
//	client.WritePoint("reconnects",
//	    map[string]string{"port": "Launch Control XL"},
//	    map[string]interface{}{"attempts": 3})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
