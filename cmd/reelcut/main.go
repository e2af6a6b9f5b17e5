// Package main provides the CLI entry point for reelcut.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/reelcut/pkg/adapters/ffmpegbin"
	"github.com/user/reelcut/pkg/adapters/ffmpegdecoder"
	"github.com/user/reelcut/pkg/adapters/ffmpegencoder"
	"github.com/user/reelcut/pkg/adapters/ffmpegtool"
	"github.com/user/reelcut/pkg/adapters/ffprobe"
	"github.com/user/reelcut/pkg/adapters/ggrenderer"
	"github.com/user/reelcut/pkg/adapters/logger"
	"github.com/user/reelcut/pkg/adapters/mp4probe"
	"github.com/user/reelcut/pkg/adapters/osfilesystem"
	"github.com/user/reelcut/pkg/adapters/progress"
	"github.com/user/reelcut/pkg/adapters/smartprobe"
	"github.com/user/reelcut/pkg/ports"
)

var version = "dev"

func main() {
	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "reelcut",
		Usage:   l10n.T("Cut, merge and upscale highlight reels from a recording"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "log-level",
				Aliases:  []string{"l"},
				Value:    "info",
				Usage:    l10n.T("Log level (debug, info, warn, error)"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "quiet",
				Aliases:  []string{"Q"},
				Usage:    l10n.T("Suppress all log output"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "no-progress",
				Usage:    l10n.T("Do not draw progress bars"),
				Category: l10n.T("Logging"),
			},
			&cli.StringFlag{
				Name:     "ffmpeg",
				Usage:    l10n.T("Path to the ffmpeg executable (falls back to FFMPEG_PATH, then PATH)"),
				Category: l10n.T("Tools"),
			},
			&cli.StringFlag{
				Name:     "ffprobe",
				Usage:    l10n.T("Path to the ffprobe executable (falls back to FFPROBE_PATH, then PATH)"),
				Category: l10n.T("Tools"),
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			cutCommand(),
			mergeCommand(),
			audioCommand(),
			remuxCommand(),
			upscaleCommand(),
			sheetCommand(),
			probeCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("reelcut version %s", version))
					return nil
				},
			},
		},
	}
}

// toolOptions are the settings that pick executables and logging.
type toolOptions struct {
	FFmpeg   string
	FFprobe  string
	LogLevel string
}

// globalToolOptions reads toolOptions from the global flags.
func globalToolOptions(c *cli.Context) toolOptions {
	return toolOptions{
		FFmpeg:   c.String("ffmpeg"),
		FFprobe:  c.String("ffprobe"),
		LogLevel: c.String("log-level"),
	}
}

// env holds the adapters shared by all commands.
type env struct {
	log      ports.Logger
	fs       ports.FileSystem
	prober   *smartprobe.Prober
	decoder  *ffmpegdecoder.Decoder
	encoder  *ffmpegencoder.Encoder
	tool     *ffmpegtool.Tool
	renderer *ggrenderer.Renderer
	progress ports.ProgressReporter
}

func newEnv(c *cli.Context, opts toolOptions) (*env, error) {
	level, err := ports.ParseLogLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	if c.Bool("quiet") {
		level = ports.LevelQuiet
	}
	log := logger.New(level)

	ffmpegPath, err := ffmpegbin.FFmpeg.Find(opts.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, l10n.T("install ffmpeg or pass --ffmpeg"))
	}
	probePath, err := ffmpegbin.FindProbe(opts.FFprobe, opts.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, l10n.T("install ffprobe or pass --ffprobe"))
	}
	log.Debug("Using %s and %s", ffmpegPath, probePath)

	prober := smartprobe.New(mp4probe.New(), ffprobe.New(probePath), log)
	return &env{
		log:      log,
		fs:       osfilesystem.New(),
		prober:   prober,
		decoder:  ffmpegdecoder.New(ffmpegPath, prober),
		encoder:  ffmpegencoder.New(ffmpegPath),
		tool:     ffmpegtool.New(ffmpegPath, log),
		renderer: ggrenderer.New(),
		progress: progress.ForTerminal(!c.Bool("no-progress") && level < ports.LevelQuiet),
	}, nil
}
