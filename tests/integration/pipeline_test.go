// Package integration contains integration tests for the reelcut pipeline
// against a real ffmpeg installation.
package integration

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

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
	"github.com/user/reelcut/pkg/orchestrator"
	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
	"github.com/user/reelcut/pkg/stages/audio"
	"github.com/user/reelcut/pkg/stages/cut"
	"github.com/user/reelcut/pkg/stages/merge"
	"github.com/user/reelcut/pkg/stages/remux"
	"github.com/user/reelcut/pkg/stages/sheet"
	"github.com/user/reelcut/pkg/stages/soundtrack"
	"github.com/user/reelcut/pkg/stages/upscale"
)

const (
	sourceFPS      = 10
	sourceSeconds  = 3
	sourceWidth    = 64
	sourceHeight   = 48
	frameTolerance = 1
)

type toolchain struct {
	ffmpeg string
	prober *smartprobe.Prober
	orch   *orchestrator.Orchestrator
}

func newToolchain(t *testing.T) toolchain {
	t.Helper()
	if !ffmpegbin.Available() {
		t.Skip("ffmpeg not available")
	}
	ffmpegPath, err := ffmpegbin.FFmpeg.Find("")
	if err != nil {
		t.Skipf("ffmpeg not found: %v", err)
	}
	probePath, err := ffmpegbin.FindProbe("", "")
	if err != nil {
		t.Skipf("ffprobe not found: %v", err)
	}

	log := logger.NewNoop()
	fs := osfilesystem.New()
	prober := smartprobe.New(mp4probe.New(), ffprobe.New(probePath), log)
	decoder := ffmpegdecoder.New(ffmpegPath, prober)
	encoder := ffmpegencoder.New(ffmpegPath)
	tool := ffmpegtool.New(ffmpegPath, log)
	renderer := ggrenderer.New()

	orch := orchestrator.New(
		cut.NewStage(decoder, encoder, progress.Noop{}, log),
		audio.NewStage(tool, prober, fs, log),
		remux.NewStage(tool, prober, fs, log),
		merge.NewStage(decoder, encoder, progress.Noop{}, log),
		upscale.NewStage(decoder, encoder, renderer, progress.Noop{}, log),
		soundtrack.NewStage(tool, fs, log),
		sheet.NewStage(decoder, renderer, fs, log),
		prober,
		fs,
		log,
	)
	return toolchain{ffmpeg: ffmpegPath, prober: prober, orch: orch}
}

// makeSource renders a test pattern with a sine tone.
func makeSource(t *testing.T, ffmpegPath string, withAudio bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.mp4")
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", fmt.Sprintf("testsrc=size=%dx%d:rate=%d:duration=%d", sourceWidth, sourceHeight, sourceFPS, sourceSeconds),
	}
	if withAudio {
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=440:duration=%d", sourceSeconds))
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p")
	if withAudio {
		args = append(args, "-c:a", "aac", "-shortest")
	}
	args = append(args, path)

	if out, err := exec.Command(ffmpegPath, args...).CombinedOutput(); err != nil {
		t.Skipf("cannot generate test source: %v\n%s", err, out)
	}
	return path
}

func withinFrames(got, want int) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= frameTolerance
}

func TestPipeline_VideoOnly(t *testing.T) {
	tc := newToolchain(t)
	source := makeSource(t, tc.ffmpeg, false)
	outDir := t.TempDir()

	config := orchestrator.DefaultConfig()
	config.SourcePath = source
	config.OutputPath = filepath.Join(outDir, "reel.mp4")
	config.Segments = []pipeline.Segment{{Start: 0, End: 9}, {Start: 15, End: 24}}
	config.Audio.Enabled = false

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := tc.orch.Run(ctx, config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.FPS != sourceFPS {
		t.Errorf("FPS = %v, want %d", result.FPS, sourceFPS)
	}
	if result.Merge.FramesWritten != 20 {
		t.Errorf("merged frames = %d, want 20", result.Merge.FramesWritten)
	}

	info, err := tc.prober.Probe(ctx, config.OutputPath)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if info.Width != sourceWidth*2 || info.Height != sourceHeight*2 {
		t.Errorf("output size = %dx%d, want %dx%d", info.Width, info.Height, sourceWidth*2, sourceHeight*2)
	}
	if info.HasAudio {
		t.Error("video-only reel must not carry audio")
	}
	if info.FrameCount > 0 && !withinFrames(info.FrameCount, 20) {
		t.Errorf("output frames = %d, want about 20", info.FrameCount)
	}
}

func TestPipeline_WithAudio(t *testing.T) {
	tc := newToolchain(t)
	source := makeSource(t, tc.ffmpeg, true)
	outDir := t.TempDir()

	config := orchestrator.DefaultConfig()
	config.SourcePath = source
	config.OutputPath = filepath.Join(outDir, "reel.mp4")
	config.Segments = []pipeline.Segment{{Start: 5, End: 14}, {Start: 20, End: 29}}
	config.Scale = 1
	config.ContactSheet = filepath.Join(outDir, "sheet.png")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := tc.orch.Run(ctx, config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.AudioMuxed {
		t.Error("expected the soundtrack to be muxed")
	}
	if result.Upscale != nil {
		t.Error("upscale should be skipped at scale 1")
	}
	for _, s := range result.Segments {
		if s.AudioPath == "" || s.SegmentPath == "" {
			t.Errorf("segment %d missing audio or remuxed clip: %+v", s.Index, s)
		}
	}

	info, err := tc.prober.Probe(ctx, config.OutputPath)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if !info.HasAudio {
		t.Error("expected an audio stream in the reel")
	}
	if info.Width != sourceWidth || info.Height != sourceHeight {
		t.Errorf("output size = %dx%d, want %dx%d", info.Width, info.Height, sourceWidth, sourceHeight)
	}
	if info.DurationSec < 1.8 || info.DurationSec > 2.3 {
		t.Errorf("duration = %.3fs, want about 2s", info.DurationSec)
	}
	if result.ContactSheet == "" {
		t.Error("contact sheet not written")
	}
}

func TestCut_TruncatesAtSourceEnd(t *testing.T) {
	tc := newToolchain(t)
	source := makeSource(t, tc.ffmpeg, false)

	ffmpegPath := tc.ffmpeg
	decoder := ffmpegdecoder.New(ffmpegPath, tc.prober)
	encoder := ffmpegencoder.New(ffmpegPath)
	stage := cut.NewStage(decoder, encoder, progress.Noop{}, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CutInput{
		SourcePath: source,
		OutputPath: filepath.Join(t.TempDir(), "tail.mp4"),
		Segment:    pipeline.Segment{Start: 25, End: 100},
		Encoder:    ports.DefaultEncoderOptions(),
	})
	if err != nil {
		t.Fatalf("cut failed: %v", err)
	}
	if !result.Truncated {
		t.Error("expected the segment to be marked truncated")
	}
	if result.FramesWritten != sourceFPS*sourceSeconds-25 {
		t.Errorf("frames = %d, want %d", result.FramesWritten, sourceFPS*sourceSeconds-25)
	}
}
