package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Loop timing defaults.
const (
	// defaultTickInterval is the scheduler quantum. It bounds input
	// latency; outbound rates are bounded per target by cadence gates.
	defaultTickInterval = 5 * time.Millisecond

	// defaultReconnectDelay is the pause between event source
	// reconnect attempts.
	defaultReconnectDelay = 2 * time.Second
)

// LoopOptions holds dependencies for the reconciliation loop.
type LoopOptions struct {
	// Source supplies input events. Required.
	Source EventSource

	// Registry holds the mappings, targets, and monitors. Required.
	Registry *Registry

	// TickInterval overrides the scheduler quantum. Default 5ms.
	TickInterval time.Duration

	// ReconnectDelay overrides the reconnect backoff. Default 2s.
	ReconnectDelay time.Duration

	// Recorder is optional telemetry.
	Recorder Recorder

	// Logger is optional structured logging.
	Logger Logger
}

// Loop is the single-threaded reconciliation scheduler. Each tick it
// drains pending input events into the registry, then gives every
// target and monitor one Invoke opportunity. All target and monitor
// state is owned by the loop goroutine, so none of it is locked.
type Loop struct {
	source         EventSource
	registry       *Registry
	tick           time.Duration
	reconnectDelay time.Duration
	recorder       Recorder
	logger         Logger
}

// NewLoop validates dependencies and builds a loop.
func NewLoop(opts LoopOptions) (*Loop, error) {
	if opts.Source == nil {
		return nil, ErrSourceRequired
	}
	if opts.Registry == nil {
		return nil, ErrRegistryRequired
	}
	tick := opts.TickInterval
	if tick == 0 {
		tick = defaultTickInterval
	}
	delay := opts.ReconnectDelay
	if delay == 0 {
		delay = defaultReconnectDelay
	}
	return &Loop{
		source:         opts.Source,
		registry:       opts.Registry,
		tick:           tick,
		reconnectDelay: delay,
		recorder:       opts.Recorder,
		logger:         opts.Logger,
	}, nil
}

// Run drives the loop until ctx is cancelled. A cancelled context is
// a clean shutdown and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	l.logInfo("reconciliation loop started",
		"tick", l.tick.String(),
		"targets", len(l.registry.Targets()),
		"monitors", len(l.registry.Monitors()))

	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		if !l.source.IsConnected() {
			if err := l.reconnect(ctx); err != nil {
				l.logInfo("reconciliation loop stopped")
				return nil
			}
		}

		l.tickOnce(ctx)

		select {
		case <-ctx.Done():
			l.logInfo("reconciliation loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// tickOnce performs one scheduler quantum: drain inputs, dispatch,
// invoke. Split out so tests can step the loop without the ticker.
func (l *Loop) tickOnce(ctx context.Context) {
	events := l.source.PollPending()
	for _, ev := range events {
		if matched := l.registry.Dispatch(ev); matched == 0 {
			l.logDebug("unmapped input",
				"channel", ev.Channel,
				"kind", ev.Kind.String(),
				"identifier", ev.Identifier,
				"value", ev.Value)
		}
	}
	if l.recorder != nil && len(events) > 0 {
		l.recorder.RecordInput(len(events))
	}

	for _, t := range l.registry.Targets() {
		l.safeInvoke(ctx, t.EntityID(), t.Invoke)
	}
	for _, m := range l.registry.Monitors() {
		l.safeInvoke(ctx, m.EntityID(), m.Invoke)
	}
}

// safeInvoke isolates one target's failure from the rest of the tick.
// Errors are logged and dropped; panics are recovered so a single
// misbehaving target cannot take the surface down.
func (l *Loop) safeInvoke(ctx context.Context, entityID string, invoke func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			l.logError("invoke panic recovered", fmt.Errorf("%v", r), "entity_id", entityID)
		}
	}()
	if err := invoke(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.logWarn("invoke failed", "entity_id", entityID, "error", err)
	}
}

// reconnect retries the event source until it comes back or ctx is
// cancelled. Returns ctx.Err() on cancellation.
func (l *Loop) reconnect(ctx context.Context) error {
	l.logWarn("event source disconnected, reconnecting",
		"backoff", l.reconnectDelay.String())
	for {
		if err := l.source.Reconnect(); err == nil {
			l.logInfo("event source reconnected")
			return nil
		} else {
			l.logWarn("reconnect attempt failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Loop) logDebug(msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l *Loop) logInfo(msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Info(msg, keysAndValues...)
	}
}

func (l *Loop) logWarn(msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, keysAndValues...)
	}
}

func (l *Loop) logError(msg string, err error, keysAndValues ...any) {
	if l.logger != nil {
		kv := append([]any{"error", err}, keysAndValues...)
		l.logger.Error(msg, kv...)
	}
}
