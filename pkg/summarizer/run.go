package summarizer

import (
	"github.com/user/reelcut/pkg/orchestrator"
	"github.com/user/reelcut/pkg/ports"
)

// FromRun builds a Summary of a finished pipeline run.
// File sizes are read through fs; unreadable sizes are reported as 0.
func FromRun(result orchestrator.RunResult, config orchestrator.Config, fs ports.FileSystem) *Summary {
	b := NewBuilder().
		WithRunID(result.RunID).
		WithSource(SourceInfo{
			Path:        result.SourcePath,
			Width:       result.Source.Width,
			Height:      result.Source.Height,
			FPS:         result.FPS,
			FrameCount:  result.Source.FrameCount,
			DurationSec: result.Source.DurationSec,
			HasAudio:    result.Source.HasAudio,
		}).
		WithSettings(Settings{
			Scale:         config.Scale,
			Interpolation: config.Interpolation.String(),
			Codec:         config.Encoder.Codec,
			Quality:       config.Encoder.Quality,
			Bitrate:       config.Encoder.Bitrate,
			AudioMode:     audioMode(config.Audio),
		}).
		WithTotalDuration(result.TotalDuration)

	for _, s := range result.Segments {
		info := SegmentInfo{
			Index:     s.Index,
			Start:     s.Segment.Start,
			End:       s.Segment.End,
			Frames:    s.Frames,
			Truncated: s.Truncated,
			Skipped:   s.ClipPath == "" && s.Err == nil,
			DriftSec:  s.DriftSec,
		}
		if s.Err != nil {
			info.Error = s.Err.Error()
		}
		b.AddSegment(info)
	}

	for _, t := range result.Timings {
		b.AddStage(t.Stage, t.Duration)
	}

	var size int64
	if result.FinalPath != "" {
		if n, err := fs.Size(result.FinalPath); err == nil {
			size = n
		}
	}
	b.WithOutput(OutputInfo{
		Path:         result.FinalPath,
		Width:        result.Final.Width,
		Height:       result.Final.Height,
		FPS:          result.Final.FPS,
		FrameCount:   result.Merge.FramesWritten,
		FileSize:     size,
		AudioMuxed:   result.AudioMuxed,
		ContactSheet: result.ContactSheet,
		MergeSkipped: result.Merge.Skipped,
	})

	return b.Build()
}

func audioMode(a orchestrator.AudioConfig) string {
	if !a.Enabled {
		return "off"
	}
	return string(a.Mode)
}
