package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/reelcut/pkg/ports"
)

func scaleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:     "scale",
			Value:    2,
			Usage:    l10n.T("Upscale factor (1 disables upscaling)"),
			Category: l10n.T("Video and Quality"),
		},
		&cli.StringFlag{
			Name:     "interpolation",
			Value:    "cubic",
			Usage:    l10n.T("Resize kernel (cubic, bilinear, approx-bilinear, nearest)"),
			Category: l10n.T("Video and Quality"),
		},
	}
}

func encoderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "quality-preset",
			Aliases:  []string{"q"},
			Usage:    l10n.T("Quality preset (low, medium, high)"),
			Category: l10n.T("Video and Quality"),
		},
		&cli.IntFlag{
			Name:     "crf",
			Usage:    l10n.T("Video CRF value (0-51, lower is better, overrides quality preset)"),
			Category: l10n.T("Video and Quality"),
		},
		&cli.StringFlag{
			Name:     "preset",
			Usage:    l10n.T("Encoder speed preset (e.g. veryfast, fast, slow)"),
			Category: l10n.T("Video and Quality"),
		},
		&cli.StringFlag{
			Name:     "codec",
			Usage:    l10n.T("ffmpeg video encoder (default: libx264)"),
			Category: l10n.T("Video and Quality"),
		},
		&cli.IntFlag{
			Name:     "bitrate",
			Usage:    l10n.T("Target video bitrate in kbps instead of CRF"),
			Category: l10n.T("Video and Quality"),
		},
	}
}

func audioEncodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "audio-codec",
			Usage:    l10n.T("Re-encode audio with this codec instead of copying it"),
			Category: l10n.T("Audio"),
		},
		&cli.StringFlag{
			Name:     "audio-bitrate",
			Usage:    l10n.T("Audio bitrate when re-encoding (default: 192k)"),
			Category: l10n.T("Audio"),
		},
	}
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: l10n.T("Print ffmpeg commands without running them"),
	}
}

// encoderOptions reads the encoder flags on top of the defaults.
func encoderOptions(c *cli.Context) ports.EncoderOptions {
	opts := ports.DefaultEncoderOptions()
	if c.IsSet("codec") {
		opts.Codec = c.String("codec")
	}
	if c.IsSet("preset") {
		opts.Preset = c.String("preset")
	}
	if c.IsSet("crf") {
		opts.Quality = c.Int("crf")
	}
	if c.IsSet("bitrate") {
		opts.Bitrate = c.Int("bitrate")
	}
	return opts
}

func stringOr(c *cli.Context, name, fallback string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return fallback
}

// splitRange splits "A-B" into its two halves.
func splitRange(s string) (string, string, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || start == "" || end == "" {
		return "", "", fmt.Errorf("expected START-END, got %q", s)
	}
	return strings.TrimSpace(start), strings.TrimSpace(end), nil
}

// parseFrameRange parses "START-END" frame numbers.
func parseFrameRange(s string) (int, int, error) {
	a, b, err := splitRange(s)
	if err != nil {
		return 0, 0, err
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start frame in %q", s)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end frame in %q", s)
	}
	return start, end, nil
}
