// gray-surface - MIDI control surface bridge for Home Assistant
//
// This is the main entry point for the gray-surface bridge. It turns a
// MIDI control surface (faders, knobs, buttons) into a low-latency
// panel for Home Assistant entities, with LED feedback reflecting
// confirmed remote state.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-surface/internal/bridge"
	"github.com/nerrad567/gray-surface/internal/hass"
	"github.com/nerrad567/gray-surface/internal/infrastructure/config"
	"github.com/nerrad567/gray-surface/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-surface/internal/infrastructure/logging"
	"github.com/nerrad567/gray-surface/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-surface/internal/midi"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	identify := flag.Bool("identify", false,
		"print decoded surface events instead of bridging (for building the mapping table)")
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *identify); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context, identify bool) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting gray-surface",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the control surface
	surface, err := midi.Open(cfg.MIDI, log)
	if err != nil {
		return fmt.Errorf("opening control surface: %w", err)
	}
	defer func() {
		log.Info("closing control surface")
		if closeErr := surface.Close(); closeErr != nil {
			log.Error("error closing control surface", "error", closeErr)
		}
	}()

	if identify {
		return runIdentify(ctx, cfg, surface)
	}

	// Home Assistant client
	hassClient := hass.New(cfg.HomeAssistant)
	hassClient.SetLogger(log)

	if err := hassClient.HealthCheck(ctx); err != nil {
		// An unreachable server may come up later; bad credentials
		// never will.
		if errors.Is(err, hass.ErrUnauthorized) {
			return fmt.Errorf("home assistant health check: %w", err)
		}
		log.Warn("home assistant unreachable at startup", "error", err)
	} else {
		log.Info("home assistant reachable", "url", cfg.HomeAssistant.URL)
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var recorder bridge.Recorder
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		recorder = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// Telemetry wraps the state client so targets stay oblivious to it.
	stateClient := bridge.NewRecordingClient(hassClient, recorder)

	registry, err := buildRegistry(cfg, stateClient, surface, log)
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}
	log.Info("registry built",
		"targets", len(registry.Targets()),
		"monitors", len(registry.Monitors()),
	)

	// Health reporting (only meaningful with MQTT)
	if mqttClient != nil {
		reporter := bridge.NewHealthReporter(bridge.HealthReporterConfig{
			BridgeID:  cfg.MQTT.Broker.ClientID,
			Version:   version,
			Interval:  cfg.GetHealthInterval(),
			Publisher: mqttClient,
			Source:    surface,
			Registry:  registry,
			Logger:    log,
		})
		if err := reporter.PublishStarting(); err != nil {
			log.Warn("failed to publish starting status", "error", err)
		}
		reporter.Start(ctx)
		defer reporter.Stop()
	}

	loop, err := bridge.NewLoop(bridge.LoopOptions{
		Source:         surface,
		Registry:       registry,
		TickInterval:   cfg.GetTickInterval(),
		ReconnectDelay: cfg.GetReconnectDelay(),
		Recorder:       recorder,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("building loop: %w", err)
	}

	log.Info("initialisation complete")
	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("reconciliation loop: %w", err)
	}

	log.Info("gray-surface stopped")
	return nil
}

// buildRegistry constructs targets, feedback monitors, and the mapping
// table from config. Cross-references were validated at load time, so
// lookups here only guard against programming errors.
func buildRegistry(cfg *config.Config, client bridge.StateClient, output bridge.SignalOutput, log *logging.Logger) (*bridge.Registry, error) {
	registry := bridge.NewRegistry()
	targets := make(map[string]bridge.Target, len(cfg.Targets))

	for _, tc := range cfg.Targets {
		// Feedback monitor first: a toggle's press hook needs it.
		var monitor *bridge.Monitor
		if tc.Feedback != nil {
			var err error
			monitor, err = bridge.NewMonitor(bridge.MonitorConfig{
				EntityID: tc.EntityID,
				Client:   client,
				Output:   output,
				Channel:  tc.Feedback.Channel,
				Note:     tc.Feedback.Note,
				Logger:   log,
			})
			if err != nil {
				return nil, fmt.Errorf("target %q: %w", tc.ID, err)
			}
			registry.AddMonitor(monitor)
		}

		var target bridge.Target
		var err error
		switch tc.Type {
		case "light":
			target, err = bridge.NewLight(bridge.LightConfig{
				EntityID: tc.EntityID,
				Client:   client,
				Mode:     parseColorMode(tc.ColorMode),
				Policy:   parseSendPolicy(tc.SendPolicy),
				Cadence:  tc.GetCadence(),
				Logger:   log,
			})
		case "toggle":
			var onPress func()
			if monitor != nil {
				onPress = monitor.NotifyPressed
			}
			target, err = bridge.NewToggle(bridge.ToggleConfig{
				EntityID: tc.EntityID,
				Domain:   tc.Domain,
				Client:   client,
				Cadence:  tc.GetCadence(),
				OnPress:  onPress,
				Logger:   log,
			})
		default:
			err = fmt.Errorf("unknown target type %q", tc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", tc.ID, err)
		}
		targets[tc.ID] = target
	}

	for i, mc := range cfg.Mappings {
		target, ok := targets[mc.Target]
		if !ok {
			return nil, fmt.Errorf("mappings[%d]: unknown target %q", i, mc.Target)
		}
		kind := bridge.MapControlChange
		if mc.Kind == "note" {
			kind = bridge.MapNote
		}
		registry.AddMapping(bridge.Mapping{
			Channel:    mc.Channel,
			Identifier: mc.Number,
			Kind:       kind,
			Target:     target,
			Attribute:  mc.Attribute,
		})
	}

	return registry, nil
}

func parseColorMode(s string) bridge.ColorMode {
	if s == "rgb" {
		return bridge.ColorModeRGB
	}
	return bridge.ColorModeHS
}

func parseSendPolicy(s string) bridge.SendPolicy {
	if s == "two_stage" {
		return bridge.SendTwoStage
	}
	return bridge.SendCombined
}

// runIdentify prints every decoded surface event until interrupted.
// Turn each control in sequence and copy the channel/number pairs into
// the mapping table.
func runIdentify(ctx context.Context, cfg *config.Config, surface *midi.Driver) error {
	fmt.Println("identify mode: move controls to see their addresses (Ctrl+C to exit)")

	ticker := time.NewTicker(cfg.GetTickInterval())
	defer ticker.Stop()

	for {
		for _, ev := range surface.PollPending() {
			fmt.Printf("channel=%-2d kind=%-8s number=%-3d value=%d\n",
				ev.Channel, ev.Kind, ev.Identifier, ev.Value)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses GRAYSURFACE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYSURFACE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
