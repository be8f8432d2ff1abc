package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/bft-labs/aisdecoder/internal/adapters/http"
	"github.com/bft-labs/aisdecoder/internal/adapters/metrics"
	"github.com/bft-labs/aisdecoder/internal/adapters/mqtt"
	"github.com/bft-labs/aisdecoder/internal/adapters/natsbus"
	"github.com/bft-labs/aisdecoder/internal/cliconfig"
	"github.com/bft-labs/aisdecoder/internal/ports"
	"github.com/bft-labs/aisdecoder/pkg/aisdecoder"
	"github.com/bft-labs/aisdecoder/plugins/configwatcher"
)

const helpDescription = `
Decode AIS NMEA sentences from a publish/subscribe bus.

Reads JSON envelopes carrying one !AIVDM/!AIVDO sentence each from the input
topic, reassembles multi-sentence messages, decodes them and publishes every
record as a JSON envelope on {output-base-topic}/{mmsi}/{msg_type}.

Configuration is read once at startup from flags, environment variables
(MQTT_*, LOG_LEVEL, AISDECODER_*) and a TOML file, in that order of
precedence.
`

var exampleUsage = strings.TrimSpace(`
  aisdecoder --broker-host localhost --input-topic ais/raw --output-base-topic ais/decoded
  aisdecoder --bus nats --broker-port 4222 --metrics-addr :9090
  MQTT_BROKER_HOST=broker.local aisdecoder --config /etc/aisdecoder/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.BootstrapLogger()

	root := &cobra.Command{
		Use:           "aisdecoder",
		Short:         "Reassemble and decode AIS sentences from MQTT or NATS",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			loadedFrom := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				loadedFrom = cfgFile
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cliconfig.NewLogger(cfg)
			if err != nil {
				return err
			}
			log = logger.Logger()
			log.Info().Interface("config", cfg.Redacted()).Str("file", loadedFrom).Msg("configuration")

			m := metrics.New()
			bus := newBus(cfg, logger, m)

			svc, err := aisdecoder.New(aisdecoder.Config{
				InputTopic:      cfg.InputTopic,
				OutputBaseTopic: cfg.OutputBaseTopic,
				QueueSize:       cfg.QueueSize,
				PublishTimeout:  cfg.PublishTimeout,
				ConnectTimeout:  cfg.ConnectTimeout,
				IgnoreChecksum:  cfg.IgnoreChecksum,
				MaxPending:      cfg.MaxPending,
				MaxPendingAge:   cfg.MaxPendingAge,
				ConfigPath:      loadedFrom,
			},
				aisdecoder.WithBus(bus),
				aisdecoder.WithLogger(logger),
				aisdecoder.WithObserver(m),
				configwatcher.WithDefaultConfigWatcher(),
			)
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}

			if err := m.RegisterReassembly(svc.ReassemblyStats); err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start: %w", err)
			}

			g, gctx := errgroup.WithContext(ctx)

			if cfg.MetricsAddr != "" {
				srv := httpAdapter.NewServer(cfg.MetricsAddr, m.Handler(), func() bool {
					return svc.Status() == aisdecoder.StateRunning
				}, logger)
				g.Go(func() error {
					log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
					return srv.Run(gctx)
				})
			}

			g.Go(func() error {
				select {
				case <-gctx.Done():
					return nil
				case <-svc.Done():
					if svc.Status() == aisdecoder.StateCrashed {
						return svc.Err()
					}
					return nil
				}
			})

			runErr := g.Wait()
			if ctx.Err() != nil {
				log.Info().Msg("received signal, stopping...")
			}

			stopErr := svc.Stop()
			if errors.Is(stopErr, aisdecoder.ErrNotRunning) {
				stopErr = nil
			}
			if runErr != nil {
				return runErr
			}
			return stopErr
		},
	}

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.aisdecoder/config.toml)")

	f.StringVar(&cfg.Bus, "bus", cfg.Bus, "bus kind: mqtt or nats")
	f.StringVar(&cfg.BrokerHost, "broker-host", cfg.BrokerHost, "broker host")
	f.IntVar(&cfg.BrokerPort, "broker-port", cfg.BrokerPort, "broker port")
	f.StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "client id (default: random aisdecoder-<uuid>)")
	f.StringVar(&cfg.Transport, "transport", cfg.Transport, "mqtt transport: tcp or websockets")
	f.BoolVar(&cfg.TLS, "tls", cfg.TLS, "connect with TLS")
	f.StringVar(&cfg.Username, "user", cfg.Username, "broker username")
	f.StringVar(&cfg.Password, "password", cfg.Password, "broker password")

	f.StringVar(&cfg.InputTopic, "input-topic", cfg.InputTopic, "topic carrying raw sentence envelopes")
	f.StringVar(&cfg.OutputBaseTopic, "output-base-topic", cfg.OutputBaseTopic, "prefix of the {base}/{mmsi}/{type} output topics")

	f.IntVar(&cfg.QoS, "qos", cfg.QoS, "mqtt QoS for subscribe and publish; on nats any value above 0 flushes each publish")
	f.DurationVar(&cfg.PublishTimeout, "publish-timeout", cfg.PublishTimeout, "timeout for each publish")
	f.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "timeout for the initial connection")
	f.IntVar(&cfg.QueueSize, "queue-size", cfg.QueueSize, "deliveries buffered ahead of the decoder; extra deliveries are dropped")

	f.IntVar(&cfg.MaxPending, "max-pending", cfg.MaxPending, "cap on incomplete multi-part messages (0 = unbounded)")
	f.DurationVar(&cfg.MaxPendingAge, "max-pending-age", cfg.MaxPendingAge, "evict incomplete messages older than this (0 = never)")
	f.BoolVar(&cfg.IgnoreChecksum, "ignore-checksum", cfg.IgnoreChecksum, "decode sentences whose checksum does not match")

	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	f.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to a size-rotated file instead of stderr")
	f.IntVar(&cfg.LogMaxSizeMB, "log-max-size", cfg.LogMaxSizeMB, "log file rotation size in MB")
	if err := f.MarkHidden("log-max-size"); err != nil {
		log.Info().Err(err).Msg("failed to hide log-max-size flag")
	}

	f.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics and /healthz on this address (disabled when empty)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("aisdecoder")
		os.Exit(1)
	}
}

// newBus builds the bus client selected by cfg.Bus.
func newBus(cfg cliconfig.Config, logger ports.Logger, observer ports.Observer) aisdecoder.Bus {
	if cfg.Bus == cliconfig.BusNATS {
		return natsbus.New(natsbus.Config{
			Host:           cfg.BrokerHost,
			Port:           cfg.BrokerPort,
			Name:           cfg.ClientID,
			TLS:            cfg.TLS,
			Username:       cfg.Username,
			Password:       cfg.Password,
			Flush:          cfg.QoS > 0,
			ConnectTimeout: cfg.ConnectTimeout,
			Logger:         logger,
			Observer:       observer,
		})
	}
	return mqtt.New(mqtt.Config{
		Host:           cfg.BrokerHost,
		Port:           cfg.BrokerPort,
		ClientID:       cfg.ClientID,
		Transport:      cfg.Transport,
		TLS:            cfg.TLS,
		Username:       cfg.Username,
		Password:       cfg.Password,
		QoS:            byte(cfg.QoS),
		ConnectTimeout: cfg.ConnectTimeout,
		Logger:         logger,
		Observer:       observer,
	})
}
