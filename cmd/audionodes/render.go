package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/audionodes/native/pkg/channels/kafka"
	"github.com/audionodes/native/pkg/cmd"
	"github.com/audionodes/native/pkg/engine"
	"github.com/audionodes/native/pkg/log"
	"github.com/audionodes/native/pkg/messages"
	"github.com/audionodes/native/pkg/metrics"
	"github.com/audionodes/native/pkg/nodes/meter"
	"github.com/audionodes/native/pkg/nodes/oscillator"
	"github.com/audionodes/native/pkg/otelhelper"
	"github.com/audionodes/native/pkg/registry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
)

func NewRenderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Run an oscillator into a level meter and report the measured levels",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "sample-rate",
				Usage:   "Sample rate in Hz",
				Value:   48000,
				Sources: cli.EnvVars("SAMPLE_RATE"),
			},
			&cli.IntFlag{
				Name:    "block-size",
				Usage:   "Frames per block",
				Value:   256,
				Sources: cli.EnvVars("BLOCK_SIZE"),
			},
			&cli.IntFlag{
				Name:  "ticks",
				Usage: "Number of blocks to render",
				Value: 200,
			},
			&cli.FloatFlag{
				Name:  "frequency",
				Usage: "Oscillator frequency in Hz",
				Value: 440,
			},
			&cli.StringFlag{
				Name:  "waveform",
				Usage: "Oscillator waveform (sine, saw, square, triangle)",
				Value: "sine",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Meter mode (peak, rms)",
				Value: "peak",
			},
			&cli.BoolFlag{
				Name:  "realtime",
				Usage: "Pace ticks at the block duration instead of rendering as fast as possible",
			},
			&cli.StringFlag{
				Name:    "transport",
				Usage:   "Return message transport (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("RETURN_TRANSPORT"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers for the kafka transport",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Address serving Prometheus metrics (disabled when empty)",
				Sources: cli.EnvVars("METRICS_ADDR"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		},
		Action: runRender,
	}
}

func runRender(ctx context.Context, command *cli.Command) error {
	log.SetupWriter(os.Stderr, command.String("log-level"), command.Bool("log-json"))

	sessionID := "session-" + uuid.New().String()[:8]
	logger := log.WithModule("audionodes-render").With("session_id", sessionID)

	ctx, cancel := log.CreateContextWithLogger(ctx, logger)
	defer cancel()

	cfg := engine.Config{
		SampleRate: int(command.Int("sample-rate")),
		BlockSize:  int(command.Int("block-size")),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tracer := otel.Tracer("audionodes")

	if command.Bool("tracing") {
		provided, shutdown, err := otelhelper.NewTracer(ctx, "audionodes")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Error("Failed to shutdown tracer provider", "error", err)
			}
		}()

		tracer = provided
	}

	ctx, span := otelhelper.StartSpan(ctx, tracer, "audionodes.render",
		otelhelper.SessionAttributes(sessionID, cfg.SampleRate, cfg.BlockSize)...)
	defer span.End()

	promRegistry := prometheus.NewRegistry()
	cmd.ServeMetrics(ctx, command.String("metrics-addr"), promRegistry, logger)

	transport, err := cmd.NewTransport(command.String("transport"), kafka.ParseBrokers(command.String("kafka-brokers")), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Error("Failed to close transport", "error", err)
		}
	}()

	channel := messages.NewChannel(
		messages.NewWatermillSink(transport.Publisher),
		messages.WithLogger(logger),
		messages.WithMetrics(metrics.NewMessages(promRegistry)),
	)

	eng, err := engine.New(cfg,
		engine.WithLogger(logger),
		engine.WithMetrics(metrics.NewEngine(promRegistry)),
		engine.WithTracer(tracer),
	)
	if err != nil {
		return err
	}

	var level atomic.Uint32

	err = messages.Subscribe(ctx, transport.Subscriber, func(_ context.Context, d messages.Delivery) error {
		if v, ok := d.Message.Number(); ok && d.Message.Kind == meter.LevelMessage {
			level.Store(math.Float32bits(v))
		}

		logger.Debug("Return message", "message", d.Message.String(), "exec_thread", d.ExecThread)

		if err := eng.AcknowledgeUI(d.Message.UID); err != nil {
			logger.Debug("Return message for a removed node", "uid", d.Message.UID, "error", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to return messages: %w", err)
	}

	pumpDone := make(chan struct{})

	go func() {
		defer close(pumpDone)

		_ = channel.Run(ctx)
	}()

	reg, err := cmd.NewRegistry(logger, channel, registry.WithTracer(tracer))
	if err != nil {
		return err
	}

	oscUID, meterUID, err := buildGraph(ctx, reg, eng, command)
	if err != nil {
		return err
	}

	logger.Info("Rendering", "sample_rate", cfg.SampleRate, "block_size", cfg.BlockSize, "ticks", command.Int("ticks"))

	if err := renderTicks(ctx, eng, int(command.Int("ticks")), command.Bool("realtime")); err != nil {
		return err
	}

	var measured float32
	if n, ok := eng.Node(meterUID); ok {
		if m, ok := n.(*meter.Meter); ok {
			measured = m.Level()
		}
	}

	desc, _ := eng.Descriptor(oscUID)

	cancel()
	<-pumpDone

	fmt.Fprintf(command.Root().Writer, "ticks=%d voices=%d level=%.4f reported=%.4f\n",
		eng.Ticks(), desc.Voices, measured, math.Float32frombits(level.Load()))

	return nil
}

func buildGraph(ctx context.Context, reg *registry.Registry, eng *engine.Engine, command *cli.Command) (uint64, uint64, error) {
	osc, err := reg.Construct(ctx, oscillator.TypeID)
	if err != nil {
		return 0, 0, err
	}

	if status := osc.SetConfigurationOption(oscillator.ConfigWaveform, command.String("waveform")); !status.OK() {
		return 0, 0, fmt.Errorf("waveform %q: %s", command.String("waveform"), status)
	}

	if err := osc.SetInputValue(oscillator.InputFrequency, float32(command.Float("frequency"))); err != nil {
		return 0, 0, err
	}

	m, err := reg.Construct(ctx, meter.TypeID)
	if err != nil {
		return 0, 0, err
	}

	if status := m.SetConfigurationOption(meter.ConfigMode, command.String("mode")); !status.OK() {
		return 0, 0, fmt.Errorf("mode %q: %s", command.String("mode"), status)
	}

	if err := eng.Add(osc); err != nil {
		return 0, 0, err
	}

	if err := eng.Add(m); err != nil {
		return 0, 0, err
	}

	oscUID, meterUID := osc.Core().UID(), m.Core().UID()

	if err := eng.Connect(oscUID, oscillator.OutputSignal, meterUID, meter.InputSignal); err != nil {
		return 0, 0, err
	}

	log.FromContext(ctx).Debug("Graph ready", "oscillator", oscUID, "meter", meterUID)

	return oscUID, meterUID, nil
}

func renderTicks(ctx context.Context, eng *engine.Engine, ticks int, realtime bool) error {
	if !realtime {
		for range ticks {
			if err := ctx.Err(); err != nil {
				return err
			}

			eng.Tick()
		}

		return nil
	}

	ticker := time.NewTicker(eng.Config().BlockDuration())
	defer ticker.Stop()

	for range ticks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			eng.Tick()
		}
	}

	return nil
}
