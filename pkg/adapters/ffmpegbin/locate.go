// Package ffmpegbin locates the ffmpeg and ffprobe executables.
package ffmpegbin

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrNotFound is returned when an executable cannot be located.
var ErrNotFound = errors.New("ffmpegbin: executable not found")

// Binary describes one executable of the ffmpeg suite.
type Binary struct {
	Name   string // Base name without extension
	EnvVar string // Environment variable holding an explicit path
}

var (
	FFmpeg  = Binary{Name: "ffmpeg", EnvVar: "FFMPEG_PATH"}
	FFprobe = Binary{Name: "ffprobe", EnvVar: "FFPROBE_PATH"}
)

func (b Binary) execName() string {
	if runtime.GOOS == "windows" {
		return b.Name + ".exe"
	}
	return b.Name
}

func (b Binary) commonPaths() []string {
	name := b.execName()
	switch runtime.GOOS {
	case "windows":
		return []string{
			filepath.Join(`C:\ffmpeg\bin`, name),
			filepath.Join(`C:\Program Files\ffmpeg\bin`, name),
			filepath.Join(`C:\Program Files (x86)\ffmpeg\bin`, name),
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin/" + name,
			"/usr/local/bin/" + name,
			"/usr/bin/" + name,
		}
	default:
		return []string{
			"/usr/bin/" + name,
			"/usr/local/bin/" + name,
			"/opt/homebrew/bin/" + name,
			"/snap/bin/" + name,
		}
	}
}

// Find resolves the executable path.
// Priority: 1) custom, 2) the environment variable, 3) PATH, 4) common locations.
func (b Binary) Find(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrNotFound, custom)
	}

	if envPath := os.Getenv(b.EnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s not found", ErrNotFound, b.EnvVar, envPath)
	}

	if path, err := exec.LookPath(b.execName()); err == nil {
		return path, nil
	}

	for _, p := range b.commonPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, b.Name)
}

// FindProbe resolves ffprobe. When only ffmpeg was given explicitly, an
// ffprobe next to it is preferred.
func FindProbe(customProbe, customFFmpeg string) (string, error) {
	if customProbe == "" && customFFmpeg != "" {
		sibling := filepath.Join(filepath.Dir(customFFmpeg), FFprobe.execName())
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}
	return FFprobe.Find(customProbe)
}

// Available reports whether both ffmpeg and ffprobe can be located.
func Available() bool {
	if _, err := FFmpeg.Find(""); err != nil {
		return false
	}
	_, err := FFprobe.Find("")
	return err == nil
}
