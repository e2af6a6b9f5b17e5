// Package smartprobe picks the cheapest prober able to describe a file.
//
// MP4-family files are read from their boxes in-process. Anything else, or
// any MP4 whose boxes do not yield a usable frame rate, goes to the fallback
// (normally ffprobe).
package smartprobe

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/user/reelcut/pkg/ports"
)

// Backend names the prober that produced a result.
type Backend string

const (
	BackendContainer Backend = "mp4"
	BackendFallback  Backend = "ffprobe"
)

var containerExts = map[string]bool{
	".mp4": true,
	".m4v": true,
	".m4a": true,
	".mov": true,
}

// Prober implements ports.MediaProber.
type Prober struct {
	container ports.MediaProber
	fallback  ports.MediaProber
	log       ports.Logger
}

// New creates a Prober. container may be nil to always use fallback.
func New(container, fallback ports.MediaProber, log ports.Logger) *Prober {
	return &Prober{container: container, fallback: fallback, log: log.WithComponent("probe")}
}

func (p *Prober) Probe(ctx context.Context, path string) (ports.MediaInfo, error) {
	info, _, err := p.ProbeWithBackend(ctx, path)
	return info, err
}

// ProbeWithBackend is Probe that also reports which backend answered.
func (p *Prober) ProbeWithBackend(ctx context.Context, path string) (ports.MediaInfo, Backend, error) {
	if p.container != nil && containerExts[strings.ToLower(filepath.Ext(path))] {
		info, err := p.container.Probe(ctx, path)
		switch {
		case err != nil:
			p.log.Debug("Container probe failed for %s: %v", path, err)
		case usable(info):
			return info, BackendContainer, nil
		default:
			p.log.Debug("Container probe incomplete for %s", path)
		}
		if ctx.Err() != nil {
			return ports.MediaInfo{}, BackendContainer, ctx.Err()
		}
	}

	info, err := p.fallback.Probe(ctx, path)
	return info, BackendFallback, err
}

// usable reports whether info carries everything the stages need.
func usable(info ports.MediaInfo) bool {
	if !info.HasVideo {
		return info.HasAudio && info.DurationSec > 0
	}
	return info.Width > 0 && info.Height > 0 && info.FPS > 0 && info.FrameCount > 0
}

var _ ports.MediaProber = (*Prober)(nil)
