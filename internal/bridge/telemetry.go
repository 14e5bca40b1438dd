package bridge

import (
	"context"
	"time"
)

// RecordingClient wraps a StateClient and forwards service-call
// outcomes and latency to a Recorder. Targets stay oblivious to
// telemetry; main wires this in when InfluxDB is enabled.
type RecordingClient struct {
	inner    StateClient
	recorder Recorder
}

// NewRecordingClient wraps inner. A nil recorder returns inner
// unchanged so callers need no special casing.
func NewRecordingClient(inner StateClient, recorder Recorder) StateClient {
	if recorder == nil {
		return inner
	}
	return &RecordingClient{inner: inner, recorder: recorder}
}

// GetState passes through; state reads are not recorded, they happen
// up to twenty times a second per monitor and would drown the bucket.
func (c *RecordingClient) GetState(ctx context.Context, entityID string) (string, error) {
	return c.inner.GetState(ctx, entityID)
}

// CallService forwards the call and records its outcome and latency.
func (c *RecordingClient) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	start := time.Now()
	err := c.inner.CallService(ctx, domain, service, data)

	entityID, _ := data["entity_id"].(string)
	c.recorder.RecordServiceCall(entityID, domain+"."+service, err == nil, time.Since(start))
	return err
}
