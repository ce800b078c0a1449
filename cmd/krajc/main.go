package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oliverbestmann/krajc"
	"github.com/oliverbestmann/krajc/internal/config"
	"github.com/oliverbestmann/krajc/internal/logging"
	"github.com/oliverbestmann/krajc/krajcbiten"
	"github.com/oliverbestmann/krajc/physics"
	"github.com/oliverbestmann/krajc/scripting"
	"github.com/pkg/profile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "krajc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a toml or yaml config file")
	frames := flag.Int("frames", -1, "number of frames to run, overrides engine.frames")
	window := flag.Bool("window", false, "open a window")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	} else if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if *frames >= 0 {
		cfg.Engine.Frames = *frames
	}

	if *window {
		cfg.Window.Enabled = true
	}

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	}

	zapLogger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	defer func() { _ = zapLogger.Sync() }()

	logger := logging.Slog(zapLogger)
	slog.SetDefault(logger)

	var app krajc.App
	app.Configure(krajc.Options{
		Parallelism: cfg.Engine.Parallelism,
		Workers:     cfg.Engine.Workers,
		Logger:      logger,
	})

	app.InsertResource(krajc.TargetFps{Value: cfg.Engine.TargetFps})
	app.InsertResource(krajc.NewTimingStats())

	app.AddPlugin(krajc.PluginFunc(physics.Plugin))
	app.AddPlugin(demoPlugin(cfg))

	if len(cfg.Scripts) > 0 {
		engine := scripting.NewEngine(logger)
		for _, path := range cfg.Scripts {
			if err := engine.LoadFile(path); err != nil {
				engine.Close()
				return err
			}
		}

		app.AddPlugin(engine)
	}

	switch {
	case cfg.Window.Enabled:
		app.RunRuntime(krajcbiten.Runner(krajcbiten.WindowConfig{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		}))

	case cfg.Engine.Frames > 0:
		app.RunRuntime(runFrames(cfg.Engine.Frames))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting runtime",
		slog.Bool("parallelism", cfg.Engine.Parallelism),
		slog.Float64("targetFps", cfg.Engine.TargetFps),
		slog.Int("frames", cfg.Engine.Frames),
	)

	return app.Run(ctx)
}

// runFrames executes a fixed number of frames as fast as possible.
func runFrames(count int) krajc.RunRuntime {
	return func(ctx context.Context, rt *krajc.Runtime) error {
		if err := rt.Startup(); err != nil {
			return err
		}

		startTime := time.Now()
		previousTime := startTime

		for frame := 0; frame < count && ctx.Err() == nil; frame++ {
			now := time.Now()
			if err := rt.Frame(now.Sub(previousTime)); err != nil {
				return err
			}

			previousTime = now
		}

		rt.Logger().Info("Frames done",
			slog.Int("frames", count),
			slog.Duration("duration", time.Since(startTime)),
		)

		return nil
	}
}
