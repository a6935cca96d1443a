package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"florin/config"
	"florin/domain/orderbook"
	"florin/domain/report"
	"florin/engine"
	"florin/infra/csvio"
	"florin/infra/outbox"
	"florin/infra/sequence"
	"florin/infra/stream"
	"florin/jobs/publisher"
)

func main() {
	configPath := flag.String("config", "", "config file path (optional)")
	input := flag.String("input", "", "order request file (overrides config)")
	output := flag.String("output", "", "execution report file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}

	log := newLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	log, err := c.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("open order requests: %w", err)
	}
	defer in.Close()

	out, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer out.Close()

	writer, err := csvio.NewWriter(out)
	if err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	sinks := []engine.Sink{writer}

	if cfg.Stream.Enabled {
		pub := stream.NewPublisher(ctx, cfg.Stream.Brokers, cfg.Stream.Topic)
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	var drain *publisher.Publisher
	if cfg.Outbox.Enabled {
		ob, err := outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			return fmt.Errorf("open outbox: %w", err)
		}
		defer ob.Close()
		sinks = append(sinks, ob)

		drain, err = publisher.Dial(ob, cfg.Outbox.Brokers, cfg.Outbox.Topic, cfg.Outbox.SweepInterval, log)
		if err != nil {
			return fmt.Errorf("connect outbox publisher: %w", err)
		}
		defer drain.Close()
		drain.Start(ctx)
	}

	eng := engine.New(
		engine.NewValidator(cfg.Instruments),
		orderbook.NewRegistry(),
		report.NewBuilder(report.NewClock()),
		sequence.New(cfg.OrderPrefix),
		log,
	)

	requests, reports, err := engine.NewPipeline(eng, log, sinks...).Run(csvio.NewReader(in, log))
	if err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush reports: %w", err)
	}

	// Final sweep so a short-lived batch run still delivers its outbox.
	if drain != nil {
		drain.Sweep()
	}

	log.Info("engine finished",
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
		zap.Int("requests", requests),
		zap.Int("reports", reports),
	)
	return nil
}
