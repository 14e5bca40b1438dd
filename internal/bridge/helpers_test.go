package bridge

import (
	"context"
	"time"
)

// serviceCall records one CallService invocation on the mock client.
type serviceCall struct {
	domain  string
	service string
	data    map[string]any
}

// mockClient implements StateClient for testing.
type mockClient struct {
	states   map[string]string
	stateErr error
	callErr  error

	calls     []serviceCall
	getCalls  int
	lastQuery string
}

func newMockClient() *mockClient {
	return &mockClient{states: make(map[string]string)}
}

func (c *mockClient) GetState(_ context.Context, entityID string) (string, error) {
	c.getCalls++
	c.lastQuery = entityID
	if c.stateErr != nil {
		return "", c.stateErr
	}
	return c.states[entityID], nil
}

func (c *mockClient) CallService(_ context.Context, domain, service string, data map[string]any) error {
	if c.callErr != nil {
		return c.callErr
	}
	c.calls = append(c.calls, serviceCall{domain: domain, service: service, data: data})
	return nil
}

// emittedSignal records one SetSignal invocation on the mock output.
type emittedSignal struct {
	channel uint8
	note    uint8
	signal  Signal
}

// mockOutput implements SignalOutput for testing.
type mockOutput struct {
	signals []emittedSignal
	err     error
}

func (o *mockOutput) SetSignal(channel, note uint8, signal Signal) error {
	o.signals = append(o.signals, emittedSignal{channel: channel, note: note, signal: signal})
	return o.err
}

// mockSource implements EventSource for testing. Each PollPending call
// returns the next queued batch.
type mockSource struct {
	batches      [][]InputEvent
	connected    bool
	reconnects   int
	reconnectErr error
}

func (s *mockSource) PollPending() []InputEvent {
	if len(s.batches) == 0 {
		return nil
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch
}

func (s *mockSource) IsConnected() bool {
	return s.connected
}

func (s *mockSource) Reconnect() error {
	s.reconnects++
	if s.reconnectErr != nil {
		return s.reconnectErr
	}
	s.connected = true
	return nil
}

// fakeClock provides a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

// attrUpdate records one Update invocation on the fake target.
type attrUpdate struct {
	attribute string
	value     uint8
}

// fakeTarget implements Target for loop and registry tests.
type fakeTarget struct {
	id      string
	updates []attrUpdate
	invokes int
	err     error
	panics  bool
}

func (f *fakeTarget) EntityID() string {
	return f.id
}

func (f *fakeTarget) Update(attribute string, value uint8) {
	f.updates = append(f.updates, attrUpdate{attribute: attribute, value: value})
}

func (f *fakeTarget) Invoke(_ context.Context) error {
	f.invokes++
	if f.panics {
		panic("target exploded")
	}
	return f.err
}
