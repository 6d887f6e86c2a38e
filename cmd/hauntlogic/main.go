// Haunt Logic - haunted attraction prop controller
//
// Reads motion and distance sensors over MQTT, decides when a visitor has
// tripped a prop, and fires that prop's actuator commands and sound clips.
// Props are scheduled independently, one at a time, or with a minimum gap
// between sounds, depending on show.mode.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/jakelevirne/Halloween2025/internal/actuation"
	"github.com/jakelevirne/Halloween2025/internal/api"
	"github.com/jakelevirne/Halloween2025/internal/audio"
	"github.com/jakelevirne/Halloween2025/internal/audio/portaudio"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/database"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/influxdb"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/logging"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/mqtt"
	"github.com/jakelevirne/Halloween2025/internal/journal"
	"github.com/jakelevirne/Halloween2025/internal/prop"
	"github.com/jakelevirne/Halloween2025/internal/show"
	"github.com/jakelevirne/Halloween2025/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// closer is one shutdown step, run in reverse order of registration.
type closer struct {
	name string
	fn   func() error
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) (err error) {
	log := logging.Default()
	log.Info("starting Haunt Logic",
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

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"output", cfg.Logging.Output,
	)

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			c := closers[i]
			log.Info("closing " + c.name)
			if closeErr := c.fn(); closeErr != nil {
				log.Error("error closing "+c.name, "error", closeErr)
				err = multierr.Append(err, fmt.Errorf("closing %s: %w", c.name, closeErr))
			}
		}
		log.Info("Haunt Logic stopped")
	}()

	// Activation journal (optional)
	var history *journal.Journal
	sinks := show.Sinks{logSink(log)}
	if cfg.Database.Enabled {
		db, openErr := database.Open(cfg.Database)
		if openErr != nil {
			return fmt.Errorf("opening database: %w", openErr)
		}
		closers = append(closers, closer{"database", db.Close})
		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("activation journal ready", "path", cfg.Database.Path)

		history = journal.New(journal.NewSQLiteRepository(db.DB), string(cfg.Show.Mode), log)
		sinks = append(sinks, history)
	} else {
		log.Info("activation journal disabled")
	}

	// Telemetry (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
		influxClient = nil
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		closers = append(closers, closer{"InfluxDB", influxClient.Close})
		influxClient.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write error", "error", writeErr)
		})
		sinks = append(sinks, telemetrySink{influx: influxClient})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// Sensor routing
	router := prop.NewRouter(prop.DevicesFromConfig(cfg.Show.Devices), nil, log)
	if influxClient != nil {
		router.SetTap(func(r prop.Reading, dev prop.Device) {
			value, numeric := r.Value()
			influxClient.WriteReading(dev.ID, dev.Name, r.Raw, value, numeric, r.ReceivedAt)
		})
	}

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	closers = append(closers, closer{"MQTT", mqttClient.Close})
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Audio (optional)
	showDeps := show.Deps{
		Router:      router,
		Dispatcher:  actuation.NewDispatcher(mqttClient, nil, byte(cfg.MQTT.QoS), log),
		Logger:      log,
		AudioDevice: cfg.Audio.Device,
		SoundDir:    cfg.Audio.SoundDir,
	}
	var audioDevices api.AudioDevices
	if cfg.Audio.Enabled {
		backend, openErr := portaudio.Open()
		if openErr != nil {
			return fmt.Errorf("opening audio: %w", openErr)
		}
		closers = append(closers, closer{"audio", backend.Close})

		mixer := audio.NewMixer(backend, audio.Options{
			Normalize:  cfg.Audio.Normalize,
			TargetPeak: cfg.Audio.TargetPeak,
			Logger:     log,
		})
		checkAudioDevice(mixer, cfg.Audio.Device, log)
		showDeps.Mixer = mixer
		audioDevices = mixer
	} else {
		log.Info("audio disabled")
	}

	// Live event stream
	var hub *api.Hub
	if cfg.API.Enabled {
		hub = api.NewHub(cfg.WebSocket, log)
		sinks = append(sinks, hub)
	}
	showDeps.Sink = sinks

	runner, err := show.NewRunner(cfg.Show, showDeps)
	if err != nil {
		return fmt.Errorf("building show: %w", err)
	}

	// Subscribe only after every prop has bound its inbox.
	if subErr := mqttClient.Subscribe(mqtt.Topics{}.AllSensors(), byte(cfg.MQTT.QoS), router.HandleMessage); subErr != nil {
		return fmt.Errorf("subscribing to sensors: %w", subErr)
	}

	if cfg.API.Enabled {
		deps := api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log,
			Show:    runner,
			Audio:   audioDevices,
			MQTT:    mqttClient,
			Hub:     hub,
			Version: version,
		}
		if history != nil {
			deps.History = history
		}
		srv, apiErr := api.New(deps)
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		closers = append(closers, closer{"API server", srv.Close})
	} else {
		log.Info("status API disabled")
	}

	log.Info("show running",
		"mode", cfg.Show.Mode,
		"props", len(cfg.Show.Props),
		"sensors", len(router.SensorIDs()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx)
	})
	if runErr := g.Wait(); runErr != nil {
		return fmt.Errorf("running show: %w", runErr)
	}

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HAUNTLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HAUNTLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// checkAudioDevice warns at startup when the configured device is missing.
// Playback still fails per request, so a device plugged in later works.
func checkAudioDevice(mixer *audio.Mixer, name string, log *logging.Logger) {
	devices, err := mixer.Devices()
	if err != nil {
		log.Warn("could not list audio devices", "error", err)
		return
	}
	dev, err := audio.FindDevice(devices, name)
	if err != nil {
		log.Warn("audio device not found", "device", name, "available", len(devices))
		return
	}
	log.Info("audio device found",
		"device", dev.Name,
		"channels", dev.MaxOutputChannels,
		"sample_rate", dev.DefaultSampleRate,
	)
}
