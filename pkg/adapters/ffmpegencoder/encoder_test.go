package ffmpegencoder

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/user/reelcut/pkg/ports"
)

func TestPartialPath(t *testing.T) {
	got := PartialPath(filepath.Join("work", "clips", "cut_001.mp4"))
	want := filepath.Join("work", "clips", ".cut_001.partial.mp4")
	if got != want {
		t.Errorf("PartialPath = %s, want %s", got, want)
	}
}

func TestArgs(t *testing.T) {
	profile := ports.Profile{Width: 1920, Height: 1080, FPS: 29.97}

	tests := []struct {
		name     string
		profile  ports.Profile
		opts     ports.EncoderOptions
		contains []string
		excludes []string
	}{
		{
			name:     "Defaults",
			profile:  profile,
			opts:     ports.DefaultEncoderOptions(),
			contains: []string{"-s 1920x1080", "-r 29.97", "-c:v libx264", "-preset fast", "-crf 18", "-pix_fmt yuv420p"},
			excludes: []string{"-b:v"},
		},
		{
			name:     "Bitrate wins over quality",
			profile:  profile,
			opts:     ports.EncoderOptions{Codec: "libx265", Preset: "slow", Bitrate: 8000, Quality: 20},
			contains: []string{"-c:v libx265", "-preset slow", "-b:v 8000k"},
			excludes: []string{"-crf"},
		},
		{
			name:     "Quality clamps",
			profile:  profile,
			opts:     ports.EncoderOptions{Quality: 63},
			contains: []string{"-crf 51", "-c:v libx264"},
		},
		{
			name:     "Odd dimensions avoid 4:2:0",
			profile:  ports.Profile{Width: 641, Height: 361, FPS: 30},
			opts:     ports.EncoderOptions{},
			contains: []string{"-pix_fmt yuv444p", "-r 30"},
			excludes: []string{"yuv420p"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := Args("out.mp4", tt.profile, tt.opts)
			line := strings.Join(args, " ")
			for _, c := range tt.contains {
				if !strings.Contains(line, c) {
					t.Errorf("expected %q in %q", c, line)
				}
			}
			for _, x := range tt.excludes {
				if strings.Contains(line, x) {
					t.Errorf("unexpected %q in %q", x, line)
				}
			}
			if args[len(args)-1] != "out.mp4" {
				t.Errorf("output must be last, got %v", args)
			}
		})
	}
}

func TestCreate_InvalidProfile(t *testing.T) {
	e := New("ffmpeg")
	if _, err := e.Create(context.Background(), "out.mp4", ports.Profile{Width: 0, Height: 10, FPS: 30}, ports.EncoderOptions{}); !errors.Is(err, ports.ErrFrameSizeMismatch) {
		t.Errorf("expected ErrFrameSizeMismatch, got %v", err)
	}
	if _, err := e.Create(context.Background(), "out.mp4", ports.Profile{Width: 10, Height: 10}, ports.EncoderOptions{}); !errors.Is(err, ports.ErrInvalidFPS) {
		t.Errorf("expected ErrInvalidFPS, got %v", err)
	}
}

func TestRGBAPixels(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 4, 2))
	if got := rgbaPixels(full); len(got) != 32 {
		t.Errorf("expected direct pixels, got %d bytes", len(got))
	}

	sub := full.SubImage(image.Rect(1, 0, 3, 2))
	if rgbaPixels(sub) != nil {
		t.Error("sub-image must be copied")
	}

	if rgbaPixels(image.NewGray(image.Rect(0, 0, 4, 2))) != nil {
		t.Error("non-RGBA image must be copied")
	}
}

// fakeFFmpeg writes a script that drains stdin into its last argument.
func fakeFFmpeg(t *testing.T, exitCode string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\ncat > \"$last\"\nexit " + exitCode + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWriter_CloseRenamesPartial(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "cut_001.mp4")
	profile := ports.Profile{Width: 2, Height: 2, FPS: 30}

	w, err := New(fakeFFmpeg(t, "0")).Create(context.Background(), out, profile, ports.EncoderOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := w.WriteFrame(image.NewRGBA(profile.Bounds())); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}
	if err := w.WriteFrame(image.NewRGBA(image.Rect(0, 0, 3, 3))); !errors.Is(err, ports.ErrFrameSizeMismatch) {
		t.Errorf("expected ErrFrameSizeMismatch, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if len(data) != 3*2*2*4 {
		t.Errorf("output has %d bytes, want %d", len(data), 3*2*2*4)
	}
	if _, err := os.Stat(PartialPath(out)); !os.IsNotExist(err) {
		t.Error("partial file should be gone")
	}
	if err := w.WriteFrame(image.NewRGBA(profile.Bounds())); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestWriter_AbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.mp4")
	profile := ports.Profile{Width: 2, Height: 2, FPS: 30}

	w, err := New(fakeFFmpeg(t, "0")).Create(context.Background(), out, profile, ports.EncoderOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.WriteFrame(image.NewRGBA(profile.Bounds())); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	w.Abort()
	w.Abort()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory after abort, found %d entries", len(entries))
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close after Abort should be a no-op, got %v", err)
	}
}

func TestWriter_FailedEncode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "up.mp4")
	profile := ports.Profile{Width: 2, Height: 2, FPS: 30}

	w, err := New(fakeFFmpeg(t, "1")).Create(context.Background(), out, profile, ports.EncoderOptions{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Close(); err == nil {
		t.Fatal("expected Close to report ffmpeg failure")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output should not exist after failed encode")
	}
}
