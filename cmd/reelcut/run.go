package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/reelcut/pkg/config"
	"github.com/user/reelcut/pkg/orchestrator"
	"github.com/user/reelcut/pkg/stages/audio"
	"github.com/user/reelcut/pkg/stages/cut"
	"github.com/user/reelcut/pkg/stages/merge"
	"github.com/user/reelcut/pkg/stages/remux"
	"github.com/user/reelcut/pkg/stages/sheet"
	"github.com/user/reelcut/pkg/stages/soundtrack"
	"github.com/user/reelcut/pkg/stages/upscale"
	"github.com/user/reelcut/pkg/summarizer"
)

func runCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    l10n.T("YAML configuration file"),
			Category: l10n.T("Input"),
		},
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    l10n.T("Source video (overrides the configuration file)"),
			Category: l10n.T("Input"),
		},
		&cli.StringSliceFlag{
			Name:     "segment",
			Aliases:  []string{"s"},
			Usage:    l10n.T("Frame range START-END, repeatable (replaces configured segments)"),
			Category: l10n.T("Input"),
		},
		&cli.StringSliceFlag{
			Name:     "time",
			Aliases:  []string{"t"},
			Usage:    l10n.T("Time range HH:MM:SS-HH:MM:SS, repeatable (replaces configured segments)"),
			Category: l10n.T("Input"),
		},
		&cli.Float64Flag{
			Name:     "fps",
			Usage:    l10n.T("Frame rate for timecodes (default: the source frame rate)"),
			Category: l10n.T("Input"),
		},
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Output MP4 file path"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "work-dir",
			Usage:    l10n.T("Directory for intermediate files"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "clean",
			Usage:    l10n.T("Remove intermediate files after a successful run"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "contact-sheet",
			Usage:    l10n.T("Write a PNG overview of the clips"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "summary",
			Usage:    l10n.T("Output execution summary to file (Markdown format)"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "continue-on-error",
			Usage:    l10n.T("Skip segments that fail to cut instead of aborting"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "no-audio",
			Usage:    l10n.T("Produce a video-only reel"),
			Category: l10n.T("Audio"),
		},
		&cli.BoolFlag{
			Name:     "strict-duration",
			Usage:    l10n.T("Fail when segment audio and video lengths differ"),
			Category: l10n.T("Audio"),
		},
	}
	flags = append(flags, scaleFlags()...)
	flags = append(flags, encoderFlags()...)
	flags = append(flags, audioEncodeFlags()...)

	return &cli.Command{
		Name:      "run",
		Usage:     l10n.T("Run the full pipeline: cut, audio, merge, upscale"),
		ArgsUsage: " ",
		Flags:     flags,
		Action:    runAction,
	}
}

// buildRunConfig loads the configuration file and applies flag overrides.
func buildRunConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	b := config.NewConfigBuilderFrom(cfg)

	if c.IsSet("input") {
		b.WithSource(c.String("input"))
	}
	if c.IsSet("output") {
		b.WithOutput(c.String("output"))
	}
	if c.IsSet("segment") || c.IsSet("time") {
		b.WithoutSegments()
		for _, s := range c.StringSlice("segment") {
			start, end, err := parseFrameRange(s)
			if err != nil {
				return cfg, err
			}
			b.WithSegment(start, end)
		}
		for _, s := range c.StringSlice("time") {
			start, end, err := splitRange(s)
			if err != nil {
				return cfg, err
			}
			b.WithTimeSegment(start, end)
		}
	}
	if c.IsSet("fps") {
		b.WithFPS(c.Float64("fps"))
	}
	if c.IsSet("scale") {
		b.WithScale(c.Float64("scale"))
	}
	if c.IsSet("interpolation") {
		b.WithInterpolation(c.String("interpolation"))
	}
	if c.IsSet("quality-preset") {
		b.WithQualityPreset(config.QualityPreset(c.String("quality-preset")))
	}
	if c.IsSet("codec") {
		b.WithVideoCodec(c.String("codec"))
	}
	if c.IsSet("bitrate") {
		b.WithVideoBitrate(c.Int("bitrate"))
	}
	if c.IsSet("work-dir") {
		b.WithWorkDir(c.String("work-dir"))
	}
	if c.Bool("clean") {
		b.WithCleanIntermediates(true)
	}
	if c.IsSet("contact-sheet") {
		b.WithContactSheet(c.String("contact-sheet"))
	}
	if c.IsSet("summary") {
		b.WithSummary(c.String("summary"))
	}
	if c.Bool("continue-on-error") {
		b.WithContinueOnError(true)
	}
	if c.Bool("no-audio") {
		b.WithAudio(false)
	}
	if c.IsSet("audio-codec") || c.IsSet("audio-bitrate") {
		built := b.Build()
		b.WithAudioEncoding(
			stringOr(c, "audio-codec", built.Audio.Codec),
			stringOr(c, "audio-bitrate", built.Audio.Bitrate),
		)
	}
	if c.Bool("strict-duration") {
		b.WithStrictDuration(cfg.Audio.MaxDriftSec)
	}

	// Explicit flags win over the file; the file wins over built-in lookup.
	b.WithTools(c.String("ffmpeg"), c.String("ffprobe"))
	if c.IsSet("log-level") || cfg.LogLevel == "" {
		b.WithLogLevel(c.String("log-level"))
	}

	cfg = b.Build()
	if c.IsSet("crf") {
		cfg.Encoder.Quality = c.Int("crf")
	}
	if c.IsSet("preset") {
		cfg.Encoder.Preset = c.String("preset")
	}
	return cfg, cfg.Validate()
}

func runAction(c *cli.Context) error {
	cfg, err := buildRunConfig(c)
	if err != nil {
		return err
	}

	e, err := newEnv(c, toolOptions{FFmpeg: cfg.FFmpegPath, FFprobe: cfg.FFprobePath, LogLevel: cfg.LogLevel})
	if err != nil {
		return err
	}

	// Timestamp segments need the frame rate before the pipeline starts.
	var sourceFPS float64
	if cfg.NeedsFPS() && cfg.FPS == 0 {
		info, err := e.prober.Probe(c.Context, cfg.Source)
		if err != nil {
			return fmt.Errorf("probe %s: %w", cfg.Source, err)
		}
		sourceFPS = info.FPS
	}
	orchConfig, err := cfg.ToOrchestratorConfig(sourceFPS)
	if err != nil {
		return err
	}

	orch := orchestrator.New(
		cut.NewStage(e.decoder, e.encoder, e.progress, e.log),
		audio.NewStage(e.tool, e.prober, e.fs, e.log),
		remux.NewStage(e.tool, e.prober, e.fs, e.log),
		merge.NewStage(e.decoder, e.encoder, e.progress, e.log),
		upscale.NewStage(e.decoder, e.encoder, e.renderer, e.progress, e.log),
		soundtrack.NewStage(e.tool, e.fs, e.log),
		sheet.NewStage(e.decoder, e.renderer, e.fs, e.log),
		e.prober,
		e.fs,
		e.log,
	)

	result, err := orch.Run(c.Context, orchConfig)
	if err != nil {
		return err
	}

	if cfg.Summary != "" {
		summary := summarizer.FromRun(result, orchConfig, e.fs)
		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
		if err := summarizer.NewWriter(formatter, e.fs).Write(cfg.Summary, summary); err != nil {
			e.log.Warn("Failed to write summary: %s", err)
		} else {
			e.log.Info("Summary saved to %s", cfg.Summary)
		}
	}

	e.log.Info("Output saved to %s", result.FinalPath)
	return nil
}
