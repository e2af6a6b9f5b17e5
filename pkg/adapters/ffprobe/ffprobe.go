// Package ffprobe reads media properties with the ffprobe command-line tool.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/user/reelcut/pkg/ports"
)

// Stream is one entry of ffprobe's "streams" array.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	RFrameRate   string `json:"r_frame_rate,omitempty"`
	NbFrames     string `json:"nb_frames,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// Format is ffprobe's "format" object.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// Output is the JSON document printed by ffprobe.
type Output struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Prober implements ports.MediaProber.
type Prober struct {
	path string
}

// New creates a Prober for the ffprobe executable at path.
func New(path string) *Prober {
	return &Prober{path: path}
}

// Probe runs ffprobe on path and converts its output.
func (p *Prober) Probe(ctx context.Context, path string) (ports.MediaInfo, error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	if err := cmd.Run(); err != nil {
		return ports.MediaInfo{}, fmt.Errorf("%w: %s: %s", ports.ErrSourceUnavailable, path, strings.TrimSpace(stderr.String()))
	}

	return Parse(stdout.Bytes())
}

// Parse converts ffprobe JSON output into MediaInfo.
func Parse(data []byte) (ports.MediaInfo, error) {
	var out Output
	if err := json.Unmarshal(data, &out); err != nil {
		return ports.MediaInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := ports.MediaInfo{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.DurationSec = d
	}

	for _, s := range out.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.VideoCodec = s.CodecName

			info.FPS = ParseRate(s.AvgFrameRate)
			if info.FPS == 0 {
				info.FPS = ParseRate(s.RFrameRate)
			}

			duration := info.DurationSec
			if d, err := strconv.ParseFloat(s.Duration, 64); err == nil && d > 0 {
				duration = d
			}
			if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
				info.FrameCount = n
			} else if info.FPS > 0 && duration > 0 {
				info.FrameCount = int(math.Round(duration * info.FPS))
			}
		}
	}
	return info, nil
}

// ParseRate parses a rational frame rate such as "30000/1001". It returns 0
// for "0/0" and malformed input.
func ParseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return 0
		}
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 || n < 0 {
		return 0
	}
	return n / d
}

// waitDelay bounds the wait for ffmpeg's pipes once the process is killed.
const waitDelay = 5 * time.Second

var _ ports.MediaProber = (*Prober)(nil)
