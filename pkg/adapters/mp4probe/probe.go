// Package mp4probe reads media properties directly from MP4 container boxes.
package mp4probe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/reelcut/pkg/ports"
)

// ErrNoTracks is returned for containers without audio or video tracks.
var ErrNoTracks = errors.New("mp4probe: no audio or video track")

// Prober implements ports.MediaProber without external tools.
type Prober struct{}

// New creates a Prober.
func New() *Prober {
	return &Prober{}
}

// Probe parses the MP4 boxes of path. Sample data is not loaded.
func (p *Prober) Probe(ctx context.Context, path string) (ports.MediaInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.MediaInfo{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("%w: %v", ports.ErrSourceUnavailable, err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return ports.MediaInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	return Inspect(mp4File)
}

// Inspect extracts MediaInfo from a decoded file.
func Inspect(mp4File *mp4.File) (ports.MediaInfo, error) {
	var moov *mp4.MoovBox
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	} else {
		moov = mp4File.Moov
	}
	if moov == nil {
		return ports.MediaInfo{}, fmt.Errorf("decode mp4: missing moov box")
	}

	info := ports.MediaInfo{}
	var videoTrak *mp4.TrakBox
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if videoTrak == nil {
				videoTrak = trak
			}
		case "soun":
			info.HasAudio = true
			if d := trackDuration(trak); d > info.DurationSec {
				info.DurationSec = d
			}
		}
	}
	if videoTrak == nil && !info.HasAudio {
		return ports.MediaInfo{}, ErrNoTracks
	}
	if moov.Mvhd != nil && moov.Mvhd.Timescale > 0 {
		if d := float64(moov.Mvhd.Duration) / float64(moov.Mvhd.Timescale); d > info.DurationSec {
			info.DurationSec = d
		}
	}
	if videoTrak == nil {
		return info, nil
	}

	info.HasVideo = true
	info.Width, info.Height = codedSize(videoTrak)
	info.VideoCodec = codecName(videoTrak)

	var timescale uint32 = 1000
	if videoTrak.Mdia.Mdhd != nil && videoTrak.Mdia.Mdhd.Timescale > 0 {
		timescale = videoTrak.Mdia.Mdhd.Timescale
	}

	var count int
	var ticks uint64
	if mp4File.IsFragmented() {
		count, ticks = fragmentedSamples(mp4File, moov, videoTrak.Tkhd.TrackID)
	} else {
		count, ticks = progressiveSamples(videoTrak)
	}

	info.FrameCount = count
	if ticks > 0 {
		videoSec := float64(ticks) / float64(timescale)
		info.FPS = float64(count) / videoSec
		if videoSec > info.DurationSec {
			info.DurationSec = videoSec
		}
	}
	return info, nil
}

func trackDuration(trak *mp4.TrakBox) float64 {
	mdhd := trak.Mdia.Mdhd
	if mdhd == nil || mdhd.Timescale == 0 {
		return 0
	}
	return float64(mdhd.Duration) / float64(mdhd.Timescale)
}

// codedSize returns the decoded frame size from the sample entry. The tkhd
// size is the presentation size, which differs for anamorphic or rotated
// tracks; it is only used when no visual sample entry is present.
func codedSize(trak *mp4.TrakBox) (int, int) {
	if minf := trak.Mdia.Minf; minf != nil && minf.Stbl != nil && minf.Stbl.Stsd != nil {
		for _, child := range minf.Stbl.Stsd.Children {
			if vse, ok := child.(*mp4.VisualSampleEntryBox); ok && vse.Width > 0 && vse.Height > 0 {
				return int(vse.Width), int(vse.Height)
			}
		}
	}
	return int(trak.Tkhd.Width >> 16), int(trak.Tkhd.Height >> 16)
}

func codecName(trak *mp4.TrakBox) string {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ""
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "hvc1", "hev1":
			return "hevc"
		case "av01":
			return "av1"
		case "vp09":
			return "vp9"
		case "mp4v":
			return "mpeg4"
		}
	}
	return ""
}

// progressiveSamples sums the stts table.
func progressiveSamples(trak *mp4.TrakBox) (int, uint64) {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stts == nil {
		return 0, 0
	}
	stts := trak.Mdia.Minf.Stbl.Stts
	var count int
	var ticks uint64
	for i, n := range stts.SampleCount {
		count += int(n)
		ticks += uint64(n) * uint64(stts.SampleTimeDelta[i])
	}
	return count, ticks
}

// fragmentedSamples walks every trun of the track. Sample durations fall back
// to the tfhd and then the trex defaults.
func fragmentedSamples(mp4File *mp4.File, moov *mp4.MoovBox, trackID uint32) (int, uint64) {
	var trexDur uint32
	if moov.Mvex != nil {
		for _, trex := range moov.Mvex.Trexs {
			if trex.TrackID == trackID {
				trexDur = trex.DefaultSampleDuration
				break
			}
		}
	}

	var count int
	var ticks uint64
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}
				defaultDur := trexDur
				if traf.Tfhd.HasDefaultSampleDuration() {
					defaultDur = traf.Tfhd.DefaultSampleDuration
				}
				for _, trun := range traf.Truns {
					for _, s := range trun.Samples {
						dur := s.Dur
						if dur == 0 {
							dur = defaultDur
						}
						count++
						ticks += uint64(dur)
					}
				}
			}
		}
	}
	return count, ticks
}

var _ ports.MediaProber = (*Prober)(nil)
