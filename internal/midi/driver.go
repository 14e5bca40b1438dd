package midi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rakyll/portmidi"

	"github.com/nerrad567/gray-surface/internal/bridge"
	"github.com/nerrad567/gray-surface/internal/infrastructure/config"
)

// Driver buffer defaults.
const (
	// defaultBufferSize is the portmidi event buffer depth. A fader
	// sweep produces well under 256 events per 5ms tick.
	defaultBufferSize = 256

	// readBatchSize caps one Read call while draining the buffer.
	readBatchSize = 64
)

// Logger interface for testability.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Driver owns the portmidi streams for one control surface. It
// implements bridge.EventSource and bridge.SignalOutput.
//
// Thread safety: the reconciliation loop is the only caller of
// PollPending, Reconnect, and SetSignal, but IsConnected is also read
// by the health reporter goroutine, so all shared state sits behind
// one mutex.
type Driver struct {
	inputName  string
	outputName string
	bufferSize int
	logger     Logger

	mu        sync.Mutex
	in        *portmidi.Stream
	out       *portmidi.Stream
	connected bool

	closeOnce sync.Once
}

// Open initialises portmidi and connects to the configured ports.
// The returned driver must be released with Close.
func Open(cfg config.MIDIConfig, logger Logger) (*Driver, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitFailed, err)
	}

	d := &Driver{
		inputName:  cfg.InputPort,
		outputName: cfg.OutputPort,
		bufferSize: cfg.BufferSize,
		logger:     logger,
	}
	if d.bufferSize <= 0 {
		d.bufferSize = defaultBufferSize
	}

	if err := d.connect(); err != nil {
		portmidi.Terminate() //nolint:errcheck // already failing, nothing to add
		return nil, err
	}
	return d, nil
}

// connect resolves and opens the configured ports.
// Caller must hold d.mu or be the only goroutine with access.
func (d *Driver) connect() error {
	inID, err := findDevice(d.inputName, true)
	if err != nil {
		return err
	}
	in, err := portmidi.NewInputStream(inID, int64(d.bufferSize))
	if err != nil {
		return fmt.Errorf("%w: input %q: %v", ErrOpenFailed, d.inputName, err)
	}

	var out *portmidi.Stream
	if d.outputName != "" {
		outID, err := findDevice(d.outputName, false)
		if err != nil {
			in.Close() //nolint:errcheck
			return err
		}
		// Latency 0 selects immediate (non-timestamped) delivery.
		out, err = portmidi.NewOutputStream(outID, int64(d.bufferSize), 0)
		if err != nil {
			in.Close() //nolint:errcheck
			return fmt.Errorf("%w: output %q: %v", ErrOpenFailed, d.outputName, err)
		}
	}

	d.in = in
	d.out = out
	d.connected = true
	d.logInfo("control surface connected",
		"input", d.inputName,
		"output", d.outputName,
		"feedback", out != nil)
	return nil
}

// findDevice resolves a port name to a portmidi device ID. Exact name
// matches win; otherwise the first substring match is used. The error
// lists the available ports so a typo is diagnosable from the log.
func findDevice(name string, wantInput bool) (portmidi.DeviceID, error) {
	var available []string
	substring := portmidi.DeviceID(-1)

	for i := range portmidi.CountDevices() {
		id := portmidi.DeviceID(i)
		info := portmidi.Info(id)
		if info == nil {
			continue
		}
		if (wantInput && !info.IsInputAvailable) || (!wantInput && !info.IsOutputAvailable) {
			continue
		}
		available = append(available, info.Name)
		if info.Name == name {
			return id, nil
		}
		if substring < 0 && strings.Contains(info.Name, name) {
			substring = id
		}
	}

	if substring >= 0 {
		return substring, nil
	}
	return -1, fmt.Errorf("%w: %q (available: %s)",
		ErrPortNotFound, name, strings.Join(available, ", "))
}

// PollPending drains all buffered events without blocking. A device
// error marks the driver disconnected; the loop notices through
// IsConnected and drives the reconnect.
func (d *Driver) PollPending() []bridge.InputEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected || d.in == nil {
		return nil
	}

	var events []bridge.InputEvent
	for {
		ok, err := d.in.Poll()
		if err != nil {
			d.dropConnection(err)
			break
		}
		if !ok {
			break
		}
		raw, err := d.in.Read(readBatchSize)
		if err != nil {
			d.dropConnection(err)
			break
		}
		if len(raw) == 0 {
			break
		}
		for _, r := range raw {
			ev, ok := decodeEvent(r.Status, r.Data1, r.Data2)
			if !ok {
				d.logDebug("unsupported message", "status", r.Status)
				continue
			}
			events = append(events, ev)
		}
	}
	return events
}

// IsConnected reports whether the device streams are usable.
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Reconnect closes any stale streams and reopens the configured
// ports. No-op when already connected.
func (d *Driver) Reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}
	d.closeStreams()
	return d.connect()
}

// SetSignal lights the indicator behind a note. Without a configured
// output port this is a silent no-op so input-only setups work.
func (d *Driver) SetSignal(channel, note uint8, signal bridge.Signal) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.out == nil {
		return nil
	}
	if !d.connected {
		return ErrNotConnected
	}
	status, data1, data2 := encodeSignal(channel, note, signal)
	if err := d.out.WriteShort(status, data1, data2); err != nil {
		d.dropConnection(err)
		return fmt.Errorf("midi: write signal: %w", err)
	}
	return nil
}

// Close releases the streams and shuts portmidi down.
// Safe to call multiple times.
func (d *Driver) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closeStreams()
		d.connected = false
		d.mu.Unlock()
		err = portmidi.Terminate()
	})
	return err
}

// dropConnection records a device failure. Caller must hold d.mu.
func (d *Driver) dropConnection(cause error) {
	d.connected = false
	d.logWarn("control surface lost", "error", cause)
}

// closeStreams releases the streams if open. Caller must hold d.mu.
func (d *Driver) closeStreams() {
	if d.in != nil {
		d.in.Close() //nolint:errcheck
		d.in = nil
	}
	if d.out != nil {
		d.out.Close() //nolint:errcheck
		d.out = nil
	}
}

func (d *Driver) logDebug(msg string, keysAndValues ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, keysAndValues...)
	}
}

func (d *Driver) logInfo(msg string, keysAndValues ...any) {
	if d.logger != nil {
		d.logger.Info(msg, keysAndValues...)
	}
}

func (d *Driver) logWarn(msg string, keysAndValues ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, keysAndValues...)
	}
}
