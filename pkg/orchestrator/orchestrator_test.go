package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/user/reelcut/pkg/adapters/ggrenderer"
	"github.com/user/reelcut/pkg/mocks"
	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
	"github.com/user/reelcut/pkg/stages/audio"
	"github.com/user/reelcut/pkg/stages/cut"
	"github.com/user/reelcut/pkg/stages/merge"
	"github.com/user/reelcut/pkg/stages/remux"
	"github.com/user/reelcut/pkg/stages/sheet"
	"github.com/user/reelcut/pkg/stages/soundtrack"
	"github.com/user/reelcut/pkg/stages/upscale"
	"github.com/user/reelcut/pkg/timecode"
)

type env struct {
	store *mocks.MediaStore
	tool  *mocks.MediaTool
	fs    *mocks.FileSystem
	log   *mocks.Logger
	orch  *Orchestrator
}

// fakeFFmpeg makes tool invocations produce outputs in store.
func fakeFFmpeg(store *mocks.MediaStore) func(ctx context.Context, args []string) (ports.ToolResult, error) {
	return func(ctx context.Context, args []string) (ports.ToolResult, error) {
		out := args[len(args)-1]
		switch {
		case slices.Contains(args, "concat"):
			store.AddAudio(out, 0)
		case slices.Contains(args, "-vn"):
			start, _ := timecode.ParseTimestamp(mocks.ArgValue(args, "-ss"))
			end, _ := timecode.ParseTimestamp(mocks.ArgValue(args, "-to"))
			store.AddAudio(out, end-start)
		default:
			src, ok := store.Get(mocks.ArgValue(args, "-i"))
			if !ok {
				return ports.ToolResult{Args: args, ExitCode: 1},
					&ports.ToolError{Tool: "ffmpeg", Args: args, ExitCode: 1, Stderr: "No such file or directory"}
			}
			v := *src
			v.Info.HasAudio = true
			store.Put(out, &v)
		}
		return ports.ToolResult{Args: args}, nil
	}
}

func newEnv() *env {
	store := mocks.NewMediaStore()
	store.AddVideo("game.mp4", 16, 8, 30, 100)

	tool := mocks.NewMediaTool()
	tool.RunFunc = fakeFFmpeg(store)
	fs := mocks.NewFileSystem()
	log := mocks.NewLogger()
	progress := &mocks.Progress{}
	renderer := ggrenderer.New()

	orch := New(
		cut.NewStage(store, store, progress, log),
		audio.NewStage(tool, store, fs, log),
		remux.NewStage(tool, store, fs, log),
		merge.NewStage(store, store, progress, log),
		upscale.NewStage(store, store, renderer, progress, log),
		soundtrack.NewStage(tool, fs, log),
		sheet.NewStage(store, renderer, fs, log),
		store,
		fs,
		log,
	)
	return &env{store: store, tool: tool, fs: fs, log: log, orch: orch}
}

func baseConfig() Config {
	config := DefaultConfig()
	config.SourcePath = "game.mp4"
	config.OutputPath = "out/reel.mp4"
	config.WorkDir = "work"
	config.Segments = []pipeline.Segment{{Start: 10, End: 20}, {Start: 50, End: 70}}
	return config
}

func TestOrchestrator_Run_VideoOnly(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.Audio.Enabled = false

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segment outcomes, got %d", len(result.Segments))
	}
	if result.Segments[0].Frames != 11 || result.Segments[1].Frames != 21 {
		t.Errorf("segment frames = %d, %d; want 11, 21", result.Segments[0].Frames, result.Segments[1].Frames)
	}
	if result.Segments[0].ClipPath != filepath.Join("work", "clips", "cut_001.mp4") {
		t.Errorf("ClipPath = %s", result.Segments[0].ClipPath)
	}
	if result.Merge.FramesWritten != 32 {
		t.Errorf("merged frames = %d, want 32", result.Merge.FramesWritten)
	}

	if result.FinalPath != "out/reel.mp4" {
		t.Errorf("FinalPath = %s", result.FinalPath)
	}
	final, ok := e.store.Get("out/reel.mp4")
	if !ok {
		t.Fatal("final output not written")
	}
	if final.Info.Width != 32 || final.Info.Height != 16 {
		t.Errorf("final size = %dx%d, want 32x16", final.Info.Width, final.Info.Height)
	}
	if final.Info.FrameCount != 32 || final.Info.FPS != 30 {
		t.Errorf("final = %d frames at %v fps", final.Info.FrameCount, final.Info.FPS)
	}

	// Frames 10..20 then 50..70 in order.
	want := 10
	for i, f := range final.Frames {
		if i == 11 {
			want = 50
		}
		if got := mocks.FrameIndex(f); got != want {
			t.Fatalf("final frame %d is source frame %d, want %d", i, got, want)
		}
		want++
	}

	if e.tool.CallCount() != 0 {
		t.Errorf("video-only run must not call ffmpeg, got %d calls", e.tool.CallCount())
	}
	if result.RunID == "" {
		t.Error("RunID not set")
	}
	if e.store.OpenHandles() != 0 {
		t.Errorf("%d handles left open", e.store.OpenHandles())
	}
}

func TestOrchestrator_Run_WithAudio(t *testing.T) {
	e := newEnv()
	config := baseConfig()

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 audio slices + 2 remuxes + join + mux
	if e.tool.CallCount() != 6 {
		t.Fatalf("expected 6 ffmpeg calls, got %d", e.tool.CallCount())
	}
	if !result.AudioMuxed {
		t.Error("AudioMuxed not set")
	}
	if result.Segments[1].AudioPath != filepath.Join("work", "audio", "audio_002.m4a") {
		t.Errorf("AudioPath = %s", result.Segments[1].AudioPath)
	}
	if result.Segments[1].SegmentPath != filepath.Join("work", "segments", "segment_002.mp4") {
		t.Errorf("SegmentPath = %s", result.Segments[1].SegmentPath)
	}

	// Merge reads the remuxed segments, upscale writes to the work dir.
	if result.Merge.Inputs[0].Path != filepath.Join("work", "segments", "segment_001.mp4") {
		t.Errorf("merge input = %s", result.Merge.Inputs[0].Path)
	}
	if result.Upscale == nil || result.Upscale.OutputPath != filepath.Join("work", "upscaled.mp4") {
		t.Errorf("Upscale = %+v", result.Upscale)
	}

	mux := e.tool.Calls[5]
	if mocks.ArgValue(mux, "-i") != filepath.Join("work", "upscaled.mp4") || mux[len(mux)-1] != "out/reel.mp4" {
		t.Errorf("final mux args = %v", mux)
	}
	if result.FinalPath != "out/reel.mp4" {
		t.Errorf("FinalPath = %s", result.FinalPath)
	}
}

func TestOrchestrator_Run_NoScale(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.Audio.Enabled = false
	config.Scale = 1

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Upscale != nil {
		t.Error("upscale should be skipped at scale 1")
	}
	if result.Merge.OutputPath != "out/reel.mp4" {
		t.Errorf("merge should write the final output, wrote %s", result.Merge.OutputPath)
	}
	if result.Final.Width != 16 {
		t.Errorf("Final = %s", result.Final)
	}
}

func TestOrchestrator_Run_SourceWithoutAudio(t *testing.T) {
	e := newEnv()
	v, _ := e.store.Get("game.mp4")
	v.Info.HasAudio = false

	_, err := e.orch.Run(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.tool.CallCount() != 0 {
		t.Errorf("audio path should be skipped, got %d calls", e.tool.CallCount())
	}
	if e.log.Count(ports.LevelWarn, "no audio") != 1 {
		t.Error("expected a warning about the missing audio stream")
	}
}

func TestOrchestrator_Run_TruncatedSegment(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.Segments = []pipeline.Segment{{Start: 90, End: 120}, {Start: 150, End: 160}}

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Segments[0].Truncated || result.Segments[0].Frames != 10 {
		t.Errorf("first segment = %+v", result.Segments[0])
	}
	if result.Segments[1].ClipPath != "" {
		t.Errorf("segment past the end should have no clip: %+v", result.Segments[1])
	}
	if e.tool.CallCount() != 4 {
		t.Errorf("expected audio for one clip only (4 calls), got %d", e.tool.CallCount())
	}
	// Audio covers the frames actually cut.
	if got := mocks.ArgValue(e.tool.Calls[0], "-to"); got != "00:00:03.333" {
		t.Errorf("audio end = %s, want 00:00:03.333", got)
	}
}

func TestOrchestrator_Run_CutFailure(t *testing.T) {
	tests := []struct {
		name            string
		continueOnError bool
		wantErr         bool
	}{
		{"Aborts by default", false, true},
		{"Skips with ContinueOnError", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			config := baseConfig()
			config.Audio.Enabled = false
			config.ContinueOnError = tt.continueOnError
			e.store.CreateErr[filepath.Join("work", "clips", "cut_001.mp4")] = errors.New("disk full")

			result, err := e.orch.Run(context.Background(), config)
			if tt.wantErr {
				if StageFailed(err) != "cut" {
					t.Fatalf("expected cut stage error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.Segments[0].Failed() {
				t.Error("first segment should be marked failed")
			}
			if result.Merge.FramesWritten != 21 {
				t.Errorf("merged frames = %d, want 21", result.Merge.FramesWritten)
			}
		})
	}
}

func TestOrchestrator_Run_StageErrors(t *testing.T) {
	t.Run("Audio tool failure", func(t *testing.T) {
		e := newEnv()
		e.tool.RunFunc = func(ctx context.Context, args []string) (ports.ToolResult, error) {
			return ports.ToolResult{}, &ports.ToolError{Tool: "ffmpeg", Args: args, ExitCode: 1}
		}
		_, err := e.orch.Run(context.Background(), baseConfig())
		if StageFailed(err) != "audio" || !errors.Is(err, ports.ErrToolFailed) {
			t.Errorf("expected audio stage tool failure, got %v", err)
		}
	})

	t.Run("Missing source", func(t *testing.T) {
		e := newEnv()
		config := baseConfig()
		config.SourcePath = "missing.mp4"
		_, err := e.orch.Run(context.Background(), config)
		if !errors.Is(err, ports.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("Invalid config", func(t *testing.T) {
		e := newEnv()
		config := baseConfig()
		config.Segments = []pipeline.Segment{{Start: 5, End: 2}}
		_, err := e.orch.Run(context.Background(), config)
		if !errors.Is(err, ports.ErrInvalidSegment) {
			t.Errorf("expected ErrInvalidSegment, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		e := newEnv()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.orch.Run(ctx, baseConfig())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if e.store.Has(filepath.Join("work", "merged.mp4")) {
			t.Error("no stage should run after cancellation")
		}
	})
}

func TestOrchestrator_Run_ContactSheetAndCleanup(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.Audio.Enabled = false
	config.ContactSheet = "out/sheet.png"
	config.CleanIntermediates = true

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ContactSheet != "out/sheet.png" {
		t.Errorf("ContactSheet = %s", result.ContactSheet)
	}
	if _, ok := e.fs.GetFile("out/sheet.png"); !ok {
		t.Error("sheet not written")
	}
	want := []string{filepath.Join("work", "clips"), filepath.Join("work", "merged.mp4")}
	if !slices.Equal(e.fs.Removed, want) {
		t.Errorf("removed %v, want %v", e.fs.Removed, want)
	}
	if result.WorkDir != "" {
		t.Errorf("WorkDir = %s after cleanup", result.WorkDir)
	}

	var stages []string
	for _, timing := range result.Timings {
		stages = append(stages, timing.Stage)
	}
	if !slices.Equal(stages, []string{"cut", "merge", "upscale", "sheet"}) {
		t.Errorf("timed stages = %v", stages)
	}
}

func TestOrchestrator_Run_CleanupKeepsOutputInWorkDir(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.WorkDir = "out"
	config.ContactSheet = "out/sheet.png"
	config.CleanIntermediates = true

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, removed := range e.fs.Removed {
		if removed == "out" || removed == "out/reel.mp4" || removed == "out/sheet.png" {
			t.Errorf("cleanup removed %s", removed)
		}
	}
	if _, ok := e.fs.GetFile("out/sheet.png"); !ok {
		t.Error("sheet deleted by cleanup")
	}
	for _, dir := range []string{"clips", "audio", "segments"} {
		if !slices.Contains(e.fs.Removed, filepath.Join("out", dir)) {
			t.Errorf("%s not removed: %v", dir, e.fs.Removed)
		}
	}
	if !slices.Contains(e.fs.Removed, filepath.Join("out", "audio_list.txt")) {
		t.Errorf("concat list not removed: %v", e.fs.Removed)
	}
	if result.WorkDir != "" {
		t.Errorf("WorkDir = %s after cleanup", result.WorkDir)
	}
}

func TestOrchestrator_Run_CleanupGeneratedWorkDir(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.WorkDir = ""
	config.Audio.Enabled = false
	config.CleanIntermediates = true

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.fs.Removed) != 1 || !strings.HasPrefix(e.fs.Removed[0], filepath.Join("out", "reelcut-")) {
		t.Errorf("removed %v, want the generated work dir only", e.fs.Removed)
	}
	if result.WorkDir != "" {
		t.Errorf("WorkDir = %s after cleanup", result.WorkDir)
	}
}

func TestHoldsAny(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"out", "out/reel.mp4", true},
		{"out", "out", true},
		{"out/clips", "out/reel.mp4", false},
		{"work", "workshop/reel.mp4", false},
		{"work", "", false},
	}
	for _, tt := range tests {
		if got := holdsAny(tt.dir, []string{tt.path}); got != tt.want {
			t.Errorf("holdsAny(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestOrchestrator_Run_SoundtrackSkipsUnmergedSegment(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	config.Segments = []pipeline.Segment{{Start: 10, End: 20}, {Start: 30, End: 40}, {Start: 50, End: 70}}
	e.store.OpenFailAfter[filepath.Join("work", "segments", "segment_002.mp4")] = 0

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Merge.Skipped) != 1 {
		t.Fatalf("Skipped = %v", result.Merge.Skipped)
	}
	list, ok := e.fs.GetFile(filepath.Join("work", "audio_list.txt"))
	if !ok {
		t.Fatal("concat list not written")
	}
	if strings.Contains(string(list), "audio_002") {
		t.Errorf("skipped segment's audio joined:\n%s", list)
	}
	if strings.Count(string(list), "file '") != 2 {
		t.Errorf("expected 2 joined slices:\n%s", list)
	}
	if result.Segments[1].AudioPath != "" {
		t.Errorf("skipped segment keeps AudioPath %s", result.Segments[1].AudioPath)
	}
}

func TestOrchestrator_Run_SoundtrackReslicesShortSegment(t *testing.T) {
	e := newEnv()
	config := baseConfig()
	e.store.ReadErrAt[filepath.Join("work", "segments", "segment_002.mp4")] = 5

	result, err := e.orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Merge.Inputs[1].Frames != 5 {
		t.Fatalf("merge inputs = %+v", result.Merge.Inputs)
	}

	// 2 audio slices + 2 remuxes + re-slice + join + mux
	if e.tool.CallCount() != 7 {
		t.Fatalf("expected 7 ffmpeg calls, got %d", e.tool.CallCount())
	}
	reslice := e.tool.Calls[4]
	if got := mocks.ArgValue(reslice, "-to"); got != "00:00:01.833" {
		t.Errorf("re-sliced audio end = %s, want 00:00:01.833", got)
	}
	if reslice[len(reslice)-1] != filepath.Join("work", "audio", "audio_002.m4a") {
		t.Errorf("re-slice output = %s", reslice[len(reslice)-1])
	}
	if e.log.Count(ports.LevelWarn, "slicing its audio again") != 1 {
		t.Error("expected a warning about the short segment")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"Valid", func(c *Config) {}, nil},
		{"No segments", func(c *Config) { c.Segments = nil }, ports.ErrEmptyInput},
		{"Zero scale", func(c *Config) { c.Scale = 0 }, ports.ErrInvalidScale},
		{"Negative fps", func(c *Config) { c.FPS = -1 }, ports.ErrInvalidFPS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := baseConfig()
			tt.mutate(&config)
			err := config.Validate()
			if tt.want == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
