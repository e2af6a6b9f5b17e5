package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
	"github.com/user/reelcut/pkg/stages/audio"
	"github.com/user/reelcut/pkg/stages/cut"
	"github.com/user/reelcut/pkg/stages/merge"
	"github.com/user/reelcut/pkg/stages/remux"
	"github.com/user/reelcut/pkg/stages/sheet"
	"github.com/user/reelcut/pkg/stages/upscale"
	"github.com/user/reelcut/pkg/timecode"
)

func cutCommand() *cli.Command {
	return &cli.Command{
		Name:      "cut",
		Usage:     l10n.T("Copy an inclusive frame range into a new clip"),
		ArgsUsage: "<source> <output> <start-end>",
		Flags:     encoderFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return fmt.Errorf("cut requires <source> <output> <start-end>")
			}
			start, end, err := parseFrameRange(c.Args().Get(2))
			if err != nil {
				return err
			}
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}

			result, err := cut.NewStage(e.decoder, e.encoder, e.progress, e.log).Execute(c.Context, pipeline.CutInput{
				SourcePath: c.Args().Get(0),
				OutputPath: c.Args().Get(1),
				Segment:    pipeline.Segment{Start: start, End: end},
				Encoder:    encoderOptions(c),
			})
			if err != nil {
				return err
			}
			fmt.Println(cutMessage(result, pipeline.Segment{Start: start, End: end}))
			return nil
		},
	}
}

// cutMessage reports the outcome of a single cut.
func cutMessage(result pipeline.CutResult, seg pipeline.Segment) string {
	if result.OutputPath == "" {
		return l10n.F("Segment %s starts after the last frame; nothing written", seg)
	}
	if result.Truncated {
		return l10n.F("Wrote %d frames to %s (source ended before frame %d)", result.FramesWritten, result.OutputPath, seg.End)
	}
	return l10n.F("Wrote %d frames to %s", result.FramesWritten, result.OutputPath)
}

func mergeCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Output MP4 file path"),
			Required: true,
		},
	}, encoderFlags()...)

	return &cli.Command{
		Name:      "merge",
		Usage:     l10n.T("Concatenate clips that share frame rate and dimensions"),
		ArgsUsage: "<clip> [clip...]",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}
			result, err := merge.NewStage(e.decoder, e.encoder, e.progress, e.log).Execute(c.Context, pipeline.MergeInput{
				InputPaths: c.Args().Slice(),
				OutputPath: c.String("output"),
				Encoder:    encoderOptions(c),
			})
			if err != nil {
				return err
			}
			for _, skipped := range result.Skipped {
				fmt.Println(l10n.F("Skipped %s", skipped))
			}
			fmt.Println(l10n.F("Wrote %d frames to %s", result.FramesWritten, result.OutputPath))
			return nil
		},
	}
}

func audioCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:     "segment",
			Aliases:  []string{"s"},
			Usage:    l10n.T("Frame range START-END, repeatable"),
			Required: true,
		},
		&cli.Float64Flag{
			Name:  "fps",
			Usage: l10n.T("Frame rate for converting frames to time (default: the source frame rate)"),
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"d"},
			Value:   ".",
			Usage:   l10n.T("Directory for audio_NNN files"),
		},
		&cli.StringFlag{
			Name:  "ext",
			Value: "m4a",
			Usage: l10n.T("Audio file extension"),
		},
		dryRunFlag(),
	}, audioEncodeFlags()...)

	return &cli.Command{
		Name:      "audio",
		Usage:     l10n.T("Extract the audio of each frame range into its own file"),
		ArgsUsage: "<source>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("audio requires <source>")
			}
			var segments []pipeline.Segment
			for _, s := range c.StringSlice("segment") {
				start, end, err := parseFrameRange(s)
				if err != nil {
					return err
				}
				segments = append(segments, pipeline.Segment{Start: start, End: end})
			}
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}
			e.tool.WithDryRun(c.Bool("dry-run"))

			input := pipeline.AudioInput{
				SourcePath: c.Args().First(),
				Segments:   segments,
				FPS:        c.Float64("fps"),
				OutputDir:  c.String("output-dir"),
				Mode:       pipeline.AudioModeCopy,
				Extension:  c.String("ext"),
			}
			if c.IsSet("audio-codec") || c.IsSet("audio-bitrate") {
				input.Mode = pipeline.AudioModeEncode
				input.Codec = c.String("audio-codec")
				input.Bitrate = c.String("audio-bitrate")
			}

			result, err := audio.NewStage(e.tool, e.prober, e.fs, e.log).Execute(c.Context, input)
			if err != nil {
				return err
			}
			for _, f := range result.Files {
				fmt.Printf("%s\t%s\t%s-%s\n", f.Path, f.Segment,
					timecode.FormatFFmpeg(f.StartSec), timecode.FormatFFmpeg(f.EndSec))
			}
			return nil
		},
	}
}

func remuxCommand() *cli.Command {
	return &cli.Command{
		Name:      "remux",
		Usage:     l10n.T("Mux each video clip with its audio file"),
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "pair",
				Aliases:  []string{"p"},
				Usage:    l10n.T("VIDEO,AUDIO file pair, repeatable"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Value:   ".",
				Usage:   l10n.T("Directory for segment_NNN.mp4 files"),
			},
			&cli.StringFlag{
				Name:  "audio-codec",
				Value: "aac",
				Usage: l10n.T("Audio codec of the muxed files"),
			},
			&cli.StringFlag{
				Name:  "audio-bitrate",
				Value: "192k",
				Usage: l10n.T("Audio bitrate of the muxed files"),
			},
			&cli.Float64Flag{
				Name:  "max-drift",
				Value: 0.1,
				Usage: l10n.T("Allowed audio/video length difference in seconds"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: l10n.T("Fail when a pair differs by more than --max-drift"),
			},
			dryRunFlag(),
		},
		Action: func(c *cli.Context) error {
			var pairs []pipeline.SegmentPair
			for i, p := range c.StringSlice("pair") {
				video, audioPath, ok := strings.Cut(p, ",")
				if !ok || video == "" || audioPath == "" {
					return fmt.Errorf("expected VIDEO,AUDIO, got %q", p)
				}
				pairs = append(pairs, pipeline.SegmentPair{Index: i + 1, VideoPath: video, AudioPath: audioPath})
			}
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}
			e.tool.WithDryRun(c.Bool("dry-run"))

			result, err := remux.NewStage(e.tool, e.prober, e.fs, e.log).Execute(c.Context, pipeline.RemuxInput{
				Pairs:          pairs,
				OutputDir:      c.String("output-dir"),
				AudioCodec:     c.String("audio-codec"),
				AudioBitrate:   c.String("audio-bitrate"),
				MaxDriftSec:    c.Float64("max-drift"),
				StrictDuration: c.Bool("strict"),
			})
			if err != nil {
				return err
			}
			for i, f := range result.Files {
				fmt.Printf("%s\t%.3fs\n", f, result.Drifts[i])
			}
			return nil
		},
	}
}

func upscaleCommand() *cli.Command {
	flags := append(scaleFlags(), encoderFlags()...)
	return &cli.Command{
		Name:      "upscale",
		Usage:     l10n.T("Resize every frame of a video by a scale factor"),
		ArgsUsage: "<source> <output>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("upscale requires <source> <output>")
			}
			interp, err := ports.ParseInterpolation(c.String("interpolation"))
			if err != nil {
				return err
			}
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}

			result, err := upscale.NewStage(e.decoder, e.encoder, e.renderer, e.progress, e.log).Execute(c.Context, pipeline.UpscaleInput{
				SourcePath:    c.Args().Get(0),
				OutputPath:    c.Args().Get(1),
				Factor:        c.Float64("scale"),
				Interpolation: interp,
				Encoder:       encoderOptions(c),
			})
			if err != nil {
				return err
			}
			fmt.Println(l10n.F("Wrote %d frames (%s -> %s) to %s",
				result.FramesWritten, result.Source, result.Profile, result.OutputPath))
			return nil
		},
	}
}

func sheetCommand() *cli.Command {
	return &cli.Command{
		Name:      "sheet",
		Usage:     l10n.T("Render a PNG contact sheet of clips"),
		ArgsUsage: "<clip> [clip...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    l10n.T("Output PNG file path"),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: l10n.T("Heading drawn above the tiles"),
			},
			&cli.IntFlag{
				Name:  "columns",
				Value: 4,
				Usage: l10n.T("Tiles per row"),
			},
			&cli.IntFlag{
				Name:  "tile-width",
				Value: 320,
				Usage: l10n.T("Tile width in pixels"),
			},
		},
		Action: func(c *cli.Context) error {
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}
			clips := make([]pipeline.SheetClip, 0, c.NArg())
			for i, path := range c.Args().Slice() {
				clips = append(clips, pipeline.SheetClip{Index: i + 1, Path: path})
			}

			result, err := sheet.NewStage(e.decoder, e.renderer, e.fs, e.log).Execute(c.Context, pipeline.SheetInput{
				Clips:      clips,
				OutputPath: c.String("output"),
				Title:      c.String("title"),
				Columns:    c.Int("columns"),
				TileWidth:  c.Int("tile-width"),
			})
			if err != nil {
				return err
			}
			fmt.Println(l10n.F("Wrote %dx%d sheet with %d tiles to %s",
				result.Width, result.Height, result.Tiles, result.OutputPath))
			return nil
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Show stream information of media files"),
		ArgsUsage: "<file> [file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "frame",
				Usage: l10n.T("Convert a frame number or HH:MM:SS timestamp using the file's frame rate"),
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("probe requires at least one file")
			}
			e, err := newEnv(c, globalToolOptions(c))
			if err != nil {
				return err
			}
			for _, path := range c.Args().Slice() {
				info, backend, err := e.prober.ProbeWithBackend(c.Context, path)
				if err != nil {
					return fmt.Errorf("probe %s: %w", path, err)
				}
				printInfo(path, info, string(backend))
				if c.IsSet("frame") {
					if err := printConversion(c.String("frame"), info.FPS); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func printInfo(path string, info ports.MediaInfo, backend string) {
	fmt.Printf("%s (%s)\n", filepath.Base(path), backend)
	if info.HasVideo {
		fmt.Printf("  video: %s %s, %d frames\n", info.VideoCodec, info.Profile(), info.FrameCount)
	}
	fmt.Printf("  audio: %t\n", info.HasAudio)
	fmt.Printf("  duration: %s\n", timecode.FormatFFmpeg(info.DurationSec))
}

// printConversion shows a frame number as a timestamp or the reverse.
func printConversion(value string, fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("no frame rate to convert %q", value)
	}
	if frame, err := strconv.Atoi(value); err == nil {
		fmt.Printf("  frame %d = %s\n", frame, timecode.FormatFFmpeg(timecode.ToSeconds(frame, fps)))
		return nil
	}
	sec, err := timecode.ParseTimestamp(value)
	if err != nil {
		return err
	}
	fmt.Printf("  %s = frame %d\n", value, timecode.ToFrame(sec, fps))
	return nil
}
