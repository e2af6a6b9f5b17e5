// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

// Intermediate layout below the work directory.
const (
	ClipsDir    = "clips"
	AudioDir    = "audio"
	SegmentsDir = "segments"
	MergedFile  = "merged.mp4"
	UpscaleFile = "upscaled.mp4"
)

// AudioConfig controls the audio path of the pipeline.
type AudioConfig struct {
	Enabled        bool
	Mode           pipeline.AudioMode
	Codec          string
	Bitrate        string
	Extension      string
	MaxDriftSec    float64
	StrictDuration bool
}

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input
	SourcePath string
	Segments   []pipeline.Segment
	FPS        float64 // 0 = use the source frame rate

	// Output
	OutputPath string
	// WorkDir holds intermediates. Empty means a run-specific directory
	// next to OutputPath.
	WorkDir string

	// Scaling
	Scale         float64
	Interpolation ports.Interpolation

	// Encoding
	Encoder ports.EncoderOptions
	Audio   AudioConfig

	// Behavior
	ContinueOnError    bool // Skip failed cuts instead of aborting
	CleanIntermediates bool
	ContactSheet       string // PNG path; empty disables the sheet
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Scale:         pipeline.DefaultScaleFactor,
		Interpolation: ports.InterpolationCubic,
		Encoder:       ports.DefaultEncoderOptions(),
		Audio: AudioConfig{
			Enabled:     true,
			Mode:        pipeline.AudioModeCopy,
			Codec:       "aac",
			Bitrate:     "192k",
			Extension:   "m4a",
			MaxDriftSec: 0.1,
		},
	}
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	cutStage        pipeline.Stage[pipeline.CutInput, pipeline.CutResult]
	audioStage      pipeline.Stage[pipeline.AudioInput, pipeline.AudioResult]
	remuxStage      pipeline.Stage[pipeline.RemuxInput, pipeline.RemuxResult]
	mergeStage      pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult]
	upscaleStage    pipeline.Stage[pipeline.UpscaleInput, pipeline.UpscaleResult]
	soundtrackStage pipeline.Stage[pipeline.SoundtrackInput, pipeline.SoundtrackResult]
	sheetStage      pipeline.Stage[pipeline.SheetInput, pipeline.SheetResult]
	prober          ports.MediaProber
	fs              ports.FileSystem
	logger          ports.Logger
}

// New creates a new Orchestrator. Errors returned by a stage are reported
// as *pipeline.StageError carrying the stage name.
func New(
	cutStage pipeline.Stage[pipeline.CutInput, pipeline.CutResult],
	audioStage pipeline.Stage[pipeline.AudioInput, pipeline.AudioResult],
	remuxStage pipeline.Stage[pipeline.RemuxInput, pipeline.RemuxResult],
	mergeStage pipeline.Stage[pipeline.MergeInput, pipeline.MergeResult],
	upscaleStage pipeline.Stage[pipeline.UpscaleInput, pipeline.UpscaleResult],
	soundtrackStage pipeline.Stage[pipeline.SoundtrackInput, pipeline.SoundtrackResult],
	sheetStage pipeline.Stage[pipeline.SheetInput, pipeline.SheetResult],
	prober ports.MediaProber,
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		cutStage:        pipeline.Named("cut", cutStage),
		audioStage:      pipeline.Named("audio", audioStage),
		remuxStage:      pipeline.Named("remux", remuxStage),
		mergeStage:      pipeline.Named("merge", mergeStage),
		upscaleStage:    pipeline.Named("upscale", upscaleStage),
		soundtrackStage: pipeline.Named("soundtrack", soundtrackStage),
		sheetStage:      pipeline.Named("sheet", sheetStage),
		prober:          prober,
		fs:              fs,
		logger:          logger,
	}
}

// Validate checks the parts of config that do not need the source file.
func (c Config) Validate() error {
	if c.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if len(c.Segments) == 0 {
		return fmt.Errorf("%w: no segments configured", ports.ErrEmptyInput)
	}
	for i, seg := range c.Segments {
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
	}
	if c.Scale <= 0 {
		return fmt.Errorf("%w: %v", ports.ErrInvalidScale, c.Scale)
	}
	if c.FPS < 0 {
		return fmt.Errorf("%w: %v", ports.ErrInvalidFPS, c.FPS)
	}
	return nil
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	started := time.Now()
	result := RunResult{
		RunID:      uuid.NewString(),
		SourcePath: config.SourcePath,
		Scale:      config.Scale,
	}

	if err := config.Validate(); err != nil {
		return result, err
	}

	o.logger.Info("Starting pipeline for %s", config.SourcePath)

	info, err := o.prober.Probe(ctx, config.SourcePath)
	if err != nil {
		o.logger.Error("Cannot read %s: %v", config.SourcePath, err)
		return result, fmt.Errorf("%w: %s: %v", ports.ErrSourceUnavailable, config.SourcePath, err)
	}
	result.Source = info

	fps := config.FPS
	if fps == 0 {
		fps = info.FPS
	}
	if fps <= 0 {
		return result, fmt.Errorf("%w: cannot determine frame rate of %s", ports.ErrInvalidFPS, config.SourcePath)
	}
	result.FPS = fps

	withAudio := config.Audio.Enabled
	if withAudio && !info.HasAudio {
		o.logger.Warn("%s has no audio stream; continuing without audio", config.SourcePath)
		withAudio = false
	}

	workDir := config.WorkDir
	ownWorkDir := workDir == ""
	if ownWorkDir {
		workDir = filepath.Join(filepath.Dir(config.OutputPath), "reelcut-"+result.RunID[:8])
	}
	result.WorkDir = workDir
	if err := o.fs.MkdirAll(filepath.Join(workDir, ClipsDir)); err != nil {
		return result, fmt.Errorf("create work directory: %w", err)
	}
	intermediates := []string{filepath.Join(workDir, ClipsDir)}

	// 1. Cut every segment
	o.logger.Info("Cutting %d segments from %s", len(config.Segments), config.SourcePath)
	timer := o.startTimer("cut")
	for i, seg := range config.Segments {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome := SegmentOutcome{Index: i + 1, Segment: seg}
		cut, err := o.cutStage.Execute(ctx, pipeline.CutInput{
			SourcePath: config.SourcePath,
			OutputPath: filepath.Join(workDir, ClipsDir, fmt.Sprintf("cut_%03d.mp4", i+1)),
			Segment:    seg,
			Encoder:    config.Encoder,
		})
		if err != nil {
			if !config.ContinueOnError || ctx.Err() != nil {
				o.logger.Error("Segment %d failed: %v", i+1, err)
				return result, err
			}
			o.logger.Warn("Skipping segment %d: %v", i+1, err)
			outcome.Err = err
		} else {
			outcome.ClipPath = cut.OutputPath
			outcome.Frames = cut.FramesWritten
			outcome.Truncated = cut.Truncated
			if cut.OutputPath == "" {
				o.logger.Warn("Segment %d is past the end of the source; no clip written", i+1)
			}
		}
		result.Segments = append(result.Segments, outcome)
	}
	result.Timings = append(result.Timings, timer.stop())

	clips := result.clipOutcomes()
	if len(clips) == 0 {
		return result, &pipeline.StageError{Stage: "cut", Err: fmt.Errorf("%w: no segment produced frames", ports.ErrEmptyInput)}
	}
	o.logger.Info("Cut %d clips", len(clips))

	// 2. Audio slices and per-segment remux
	mergeInputs := make([]string, len(clips))
	for i, c := range clips {
		mergeInputs[i] = result.Segments[c].ClipPath
	}
	if withAudio {
		files, err := o.runAudio(ctx, config, fps, workDir, &result, clips)
		if err != nil {
			return result, err
		}
		mergeInputs = files.segments
	}

	// 3. Merge
	if err := ctx.Err(); err != nil {
		return result, err
	}
	upscale := config.Scale != 1
	mergePath := filepath.Join(workDir, MergedFile)
	if !upscale && !withAudio {
		mergePath = config.OutputPath
	}
	o.logger.Info("Merging %d clips", len(mergeInputs))
	timer = o.startTimer("merge")
	merged, err := o.mergeStage.Execute(ctx, pipeline.MergeInput{
		InputPaths: mergeInputs,
		OutputPath: mergePath,
		Encoder:    config.Encoder,
	})
	if err != nil {
		o.logger.Error("Merge failed: %v", err)
		return result, err
	}
	result.Timings = append(result.Timings, timer.stop())
	result.Merge = merged
	result.Final = merged.Profile
	if mergePath != config.OutputPath {
		intermediates = append(intermediates, mergePath)
	}
	for _, skipped := range merged.Skipped {
		o.logger.Warn("Merge skipped %s", skipped)
	}
	o.logger.Info("Merged %d frames at %s", merged.FramesWritten, merged.Profile)

	var audioFiles []string
	if withAudio {
		intermediates = append(intermediates, filepath.Join(workDir, AudioDir), filepath.Join(workDir, SegmentsDir))
		audioFiles, err = o.alignAudio(ctx, config, fps, workDir, &result, clips, mergeInputs, merged)
		if err != nil {
			return result, err
		}
	}

	// 4. Upscale
	videoPath := merged.OutputPath
	if upscale {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		upscalePath := config.OutputPath
		if withAudio {
			upscalePath = filepath.Join(workDir, UpscaleFile)
		}
		o.logger.Info("Upscaling by %g", config.Scale)
		timer = o.startTimer("upscale")
		up, err := o.upscaleStage.Execute(ctx, pipeline.UpscaleInput{
			SourcePath:    merged.OutputPath,
			OutputPath:    upscalePath,
			Factor:        config.Scale,
			Interpolation: config.Interpolation,
			Encoder:       config.Encoder,
		})
		if err != nil {
			o.logger.Error("Upscale failed: %v", err)
			return result, err
		}
		result.Timings = append(result.Timings, timer.stop())
		result.Upscale = &up
		result.Final = up.Profile
		videoPath = up.OutputPath
		if upscalePath != config.OutputPath {
			intermediates = append(intermediates, upscalePath)
		}
		o.logger.Info("Upscaled to %dx%d", up.Profile.Width, up.Profile.Height)
	}

	// 5. Soundtrack
	if withAudio {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		o.logger.Info("Adding soundtrack from %d audio files", len(audioFiles))
		timer = o.startTimer("soundtrack")
		st, err := o.soundtrackStage.Execute(ctx, pipeline.SoundtrackInput{
			VideoPath:    videoPath,
			AudioPaths:   audioFiles,
			OutputPath:   config.OutputPath,
			WorkDir:      workDir,
			AudioCodec:   config.Audio.Codec,
			AudioBitrate: config.Audio.Bitrate,
		})
		if err != nil {
			o.logger.Error("Soundtrack failed: %v", err)
			return result, err
		}
		result.Timings = append(result.Timings, timer.stop())
		result.AudioMuxed = true
		videoPath = st.OutputPath
		intermediates = append(intermediates, st.ListPath, st.AudioPath)
	}
	result.FinalPath = videoPath

	// 6. Contact sheet
	if config.ContactSheet != "" {
		sheetClips := make([]pipeline.SheetClip, len(clips))
		for i, c := range clips {
			s := result.Segments[c]
			sheetClips[i] = pipeline.SheetClip{Index: s.Index, Path: s.ClipPath, Segment: s.Segment}
		}
		timer = o.startTimer("sheet")
		sheet, err := o.sheetStage.Execute(ctx, pipeline.SheetInput{
			Clips:      sheetClips,
			OutputPath: config.ContactSheet,
			Title:      filepath.Base(config.SourcePath),
		})
		if err != nil {
			// The reel itself is complete; a missing overview is not fatal.
			o.logger.Warn("Contact sheet failed: %v", err)
		} else {
			result.Timings = append(result.Timings, timer.stop())
			result.ContactSheet = sheet.OutputPath
		}
	}

	if config.CleanIntermediates && o.clean(workDir, ownWorkDir, intermediates, result.FinalPath, result.ContactSheet) {
		result.WorkDir = ""
	}

	result.TotalDuration = time.Since(started)
	o.logger.Info("Pipeline completed: %s", result.FinalPath)
	return result, nil
}

// clean removes what the run wrote into workDir. A user-supplied work
// directory may also hold the output, so only the run's own files go; a
// generated one is removed whole. Paths holding a kept file are skipped.
func (o *Orchestrator) clean(workDir string, ownWorkDir bool, intermediates []string, keep ...string) bool {
	targets := intermediates
	if ownWorkDir {
		targets = []string{workDir}
	}
	ok := true
	for _, target := range targets {
		if target == "" {
			continue
		}
		if holdsAny(target, keep) {
			o.logger.Warn("Cannot remove %s: %v", target, errHoldsOutput)
			ok = false
			continue
		}
		if err := o.fs.RemoveAll(target); err != nil {
			o.logger.Warn("Cannot remove %s: %v", target, err)
			ok = false
		}
	}
	return ok
}

var errHoldsOutput = errors.New("contains an output file")

// holdsAny reports whether dir is, or contains, any of paths.
func holdsAny(dir string, paths []string) bool {
	dir = filepath.Clean(dir)
	for _, p := range paths {
		if p == "" {
			continue
		}
		rel, err := filepath.Rel(dir, filepath.Clean(p))
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// alignAudio returns the audio slices of the clips that made it into the
// merged video, in merge order. Skipped clips are left out and clips the
// merge read only partly are sliced again to the frames it copied.
func (o *Orchestrator) alignAudio(ctx context.Context, config Config, fps float64, workDir string, result *RunResult, clips []int, mergeInputs []string, merged pipeline.MergeResult) ([]string, error) {
	byPath := make(map[string]int, len(mergeInputs))
	for i, path := range mergeInputs {
		byPath[path] = clips[i]
	}

	var audioFiles []string
	var shortSegments []pipeline.Segment
	var shortNumbers []int
	var shortOutcomes []int
	for _, in := range merged.Inputs {
		c, ok := byPath[in.Path]
		if !ok || in.Frames == 0 {
			continue
		}
		s := result.Segments[c]
		if in.Frames < s.Frames {
			o.logger.Warn("Segment %d merged with %d of %d frames; slicing its audio again", s.Index, in.Frames, s.Frames)
			shortSegments = append(shortSegments, pipeline.Segment{Start: s.Segment.Start, End: s.Segment.Start + in.Frames - 1})
			shortNumbers = append(shortNumbers, s.Index)
			shortOutcomes = append(shortOutcomes, c)
		}
		audioFiles = append(audioFiles, s.AudioPath)
	}
	for _, skipped := range merged.Skipped {
		if c, ok := byPath[skipped]; ok {
			result.Segments[c].AudioPath = ""
		}
	}
	if len(audioFiles) == 0 {
		return nil, &pipeline.StageError{Stage: "merge", Err: fmt.Errorf("%w: no clip was merged", ports.ErrEmptyInput)}
	}
	if len(shortSegments) == 0 {
		return audioFiles, nil
	}

	timer := o.startTimer("audio")
	resliced, err := o.audioStage.Execute(ctx, pipeline.AudioInput{
		SourcePath: config.SourcePath,
		Segments:   shortSegments,
		Numbers:    shortNumbers,
		FPS:        fps,
		OutputDir:  filepath.Join(workDir, AudioDir),
		Mode:       config.Audio.Mode,
		Codec:      config.Audio.Codec,
		Bitrate:    config.Audio.Bitrate,
		Extension:  config.Audio.Extension,
	})
	if err != nil {
		o.logger.Error("Audio extraction failed: %v", err)
		return nil, err
	}
	result.Timings = append(result.Timings, timer.stop())

	// The slices keep their file names, so audioFiles stays valid.
	for i, f := range resliced.Files {
		result.Segments[shortOutcomes[i]].AudioPath = f.Path
	}
	return audioFiles, nil
}

type audioOutputs struct {
	segments []string
}

// runAudio slices audio for every clip and muxes it onto the clip.
func (o *Orchestrator) runAudio(ctx context.Context, config Config, fps float64, workDir string, result *RunResult, clips []int) (audioOutputs, error) {
	out := audioOutputs{}

	segments := make([]pipeline.Segment, len(clips))
	numbers := make([]int, len(clips))
	for i, c := range clips {
		s := result.Segments[c]
		// Truncated clips get audio of the same length.
		segments[i] = pipeline.Segment{Start: s.Segment.Start, End: s.Segment.Start + s.Frames - 1}
		numbers[i] = s.Index
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	o.logger.Info("Extracting audio for %d segments", len(segments))
	timer := o.startTimer("audio")
	audio, err := o.audioStage.Execute(ctx, pipeline.AudioInput{
		SourcePath: config.SourcePath,
		Segments:   segments,
		Numbers:    numbers,
		FPS:        fps,
		OutputDir:  filepath.Join(workDir, AudioDir),
		Mode:       config.Audio.Mode,
		Codec:      config.Audio.Codec,
		Bitrate:    config.Audio.Bitrate,
		Extension:  config.Audio.Extension,
	})
	if err != nil {
		o.logger.Error("Audio extraction failed: %v", err)
		return out, err
	}
	result.Timings = append(result.Timings, timer.stop())

	pairs := make([]pipeline.SegmentPair, len(audio.Files))
	for i, f := range audio.Files {
		c := clips[i]
		result.Segments[c].AudioPath = f.Path
		pairs[i] = pipeline.SegmentPair{Index: f.Index, VideoPath: result.Segments[c].ClipPath, AudioPath: f.Path}
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}
	timer = o.startTimer("remux")
	remux, err := o.remuxStage.Execute(ctx, pipeline.RemuxInput{
		Pairs:          pairs,
		OutputDir:      filepath.Join(workDir, SegmentsDir),
		AudioCodec:     config.Audio.Codec,
		AudioBitrate:   config.Audio.Bitrate,
		MaxDriftSec:    config.Audio.MaxDriftSec,
		StrictDuration: config.Audio.StrictDuration,
	})
	if err != nil {
		o.logger.Error("Remux failed: %v", err)
		return out, err
	}
	result.Timings = append(result.Timings, timer.stop())

	for i, path := range remux.Files {
		c := clips[i]
		result.Segments[c].SegmentPath = path
		if i < len(remux.Drifts) {
			result.Segments[c].DriftSec = remux.Drifts[i]
		}
	}
	out.segments = remux.Files
	return out, nil
}

type stageTimer struct {
	name    string
	started time.Time
}

func (o *Orchestrator) startTimer(name string) stageTimer {
	return stageTimer{name: name, started: time.Now()}
}

func (t stageTimer) stop() StageTiming {
	return StageTiming{Stage: t.name, Duration: time.Since(t.started)}
}

// SegmentOutcome reports what happened to one configured segment.
type SegmentOutcome struct {
	Index       int // 1-based
	Segment     pipeline.Segment
	ClipPath    string // Empty when no frame was in range or the cut failed
	AudioPath   string
	SegmentPath string // Remuxed clip
	Frames      int
	Truncated   bool
	DriftSec    float64
	Err         error // Set when the cut failed and ContinueOnError was on
}

// Failed reports whether the segment's cut failed.
func (s SegmentOutcome) Failed() bool {
	return s.Err != nil
}

// StageTiming records the wall time of one stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	RunID      string
	SourcePath string
	Source     ports.MediaInfo
	FPS        float64 // Frame rate used for timecodes
	Scale      float64
	WorkDir    string // Empty after intermediates were cleaned

	Segments []SegmentOutcome
	Merge    pipeline.MergeResult
	Upscale  *pipeline.UpscaleResult // nil when scale is 1

	Final        ports.Profile
	FinalPath    string
	AudioMuxed   bool
	ContactSheet string

	Timings       []StageTiming
	TotalDuration time.Duration
}

// clipOutcomes returns the indexes into Segments of outcomes with a clip.
func (r *RunResult) clipOutcomes() []int {
	var idx []int
	for i, s := range r.Segments {
		if s.ClipPath != "" {
			idx = append(idx, i)
		}
	}
	return idx
}

// StageFailed returns the name of the stage that produced err, if any.
func StageFailed(err error) string {
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
