// Package soundtrack joins per-segment audio and muxes it onto the final video.
package soundtrack

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/reelcut/pkg/pipeline"
	"github.com/user/reelcut/pkg/ports"
)

const (
	listName       = "audio_list.txt"
	defaultCodec   = "aac"
	defaultBitrate = "192k"
)

// Stage rebuilds the audio track that the frame-level merge drops.
type Stage struct {
	tool   ports.MediaTool
	fs     ports.FileSystem
	logger ports.Logger
}

// NewStage creates a new soundtrack stage.
func NewStage(tool ports.MediaTool, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		tool:   tool,
		fs:     fs,
		logger: logger.WithComponent("soundtrack"),
	}
}

// ConcatList renders a concat demuxer list. Paths are made absolute and
// single quotes are escaped for the demuxer's quoting rules.
func ConcatList(paths []string) (string, error) {
	var b strings.Builder
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", p, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return b.String(), nil
}

// JoinArgs builds the ffmpeg arguments that stream-copy every file in list into out.
func JoinArgs(list, out string) []string {
	return []string{"-y", "-f", "concat", "-safe", "0", "-i", list, "-c", "copy", out}
}

// MuxArgs builds the ffmpeg arguments that replace the audio of video with audio.
func MuxArgs(video, audio, out, codec, bitrate string) []string {
	return []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", codec,
		"-b:a", bitrate,
		"-shortest",
		out,
	}
}

// Execute joins input.AudioPaths in order and muxes the result onto input.VideoPath.
func (s *Stage) Execute(ctx context.Context, input pipeline.SoundtrackInput) (pipeline.SoundtrackResult, error) {
	result := pipeline.SoundtrackResult{}

	if len(input.AudioPaths) == 0 {
		return result, ports.ErrEmptyInput
	}
	codec := input.AudioCodec
	if codec == "" {
		codec = defaultCodec
	}
	bitrate := input.AudioBitrate
	if bitrate == "" {
		bitrate = defaultBitrate
	}

	list, err := ConcatList(input.AudioPaths)
	if err != nil {
		return result, err
	}
	listPath := filepath.Join(input.WorkDir, listName)
	if err := s.fs.WriteFile(listPath, []byte(list)); err != nil {
		return result, fmt.Errorf("write concat list: %w", err)
	}
	result.ListPath = listPath

	ext := filepath.Ext(input.AudioPaths[0])
	if ext == "" {
		ext = ".m4a"
	}
	joined := filepath.Join(input.WorkDir, "soundtrack"+ext)

	s.logger.Debug("Joining %d audio files into %s", len(input.AudioPaths), joined)
	if _, err := s.tool.Run(ctx, JoinArgs(listPath, joined)); err != nil {
		s.logger.Error("Audio join failed: %v", err)
		return result, fmt.Errorf("join audio: %w", err)
	}
	result.AudioPath = joined

	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.Debug("Muxing %s onto %s", joined, input.VideoPath)
	if _, err := s.tool.Run(ctx, MuxArgs(input.VideoPath, joined, input.OutputPath, codec, bitrate)); err != nil {
		s.logger.Error("Audio mux failed: %v", err)
		return result, fmt.Errorf("mux audio: %w", err)
	}
	result.OutputPath = input.OutputPath
	return result, nil
}
