package mp4probe

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/reelcut/pkg/ports"
)

// writeFragmented writes a single-fragment video file with n samples.
func writeFragmented(t *testing.T, width, height int, fps float64, n int) string {
	t.Helper()
	return writeFragmentedCoded(t, width, height, 0, 0, fps, n)
}

// writeFragmentedCoded is writeFragmented with an avc1 sample entry of
// codedW x codedH when both are non-zero.
func writeFragmentedCoded(t *testing.T, width, height, codedW, codedH int, fps float64, n int) string {
	t.Helper()

	timescale := uint32(fps * 1000)
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)
	if codedW > 0 && codedH > 0 {
		entry := mp4.NewVisualSampleEntryBox("avc1")
		entry.Width = uint16(codedW)
		entry.Height = uint16(codedH)
		trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	}

	frag, err := mp4.CreateFragment(1, trak.Tkhd.TrackID)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	dur := uint32(1000)
	for i := 0; i < n; i++ {
		data := []byte{0, 0, 0, byte(i)}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(data)),
				Dur:   dur,
			},
			DecodeTime: uint64(i) * uint64(dur),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbe_Fragmented(t *testing.T) {
	path := writeFragmented(t, 320, 240, 30, 45)

	info, err := New().Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if !info.HasVideo {
		t.Fatal("expected video track")
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("size = %dx%d, want 320x240", info.Width, info.Height)
	}
	if info.FrameCount != 45 {
		t.Errorf("FrameCount = %d, want 45", info.FrameCount)
	}
	if math.Abs(info.FPS-30) > 1e-6 {
		t.Errorf("FPS = %v, want 30", info.FPS)
	}
	if math.Abs(info.DurationSec-1.5) > 1e-6 {
		t.Errorf("DurationSec = %v, want 1.5", info.DurationSec)
	}
}

func TestCodedSize_Anamorphic(t *testing.T) {
	// 720x576 storage displayed at 1024x576
	path := writeFragmentedCoded(t, 1024, 576, 720, 576, 25, 3)

	info, err := New().Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != 720 || info.Height != 576 {
		t.Errorf("size = %dx%d, want coded 720x576", info.Width, info.Height)
	}
	if info.VideoCodec != "h264" {
		t.Errorf("VideoCodec = %q, want h264", info.VideoCodec)
	}
}

func TestCodedSize_Rotated(t *testing.T) {
	// Portrait phone footage: stored 64x36, presented rotated as 36x64
	path := writeFragmentedCoded(t, 36, 64, 64, 36, 30, 3)

	info, err := New().Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Width != 64 || info.Height != 36 {
		t.Errorf("size = %dx%d, want coded 64x36", info.Width, info.Height)
	}
}

func TestProbe_MissingFile(t *testing.T) {
	_, err := New().Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ports.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestProbe_NotMP4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.mp4")
	if err := os.WriteFile(path, []byte("plain text, not boxes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New().Probe(context.Background(), path); err == nil {
		t.Error("expected error for non-MP4 content")
	}
}

func TestProbe_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Probe(ctx, "any.mp4"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
