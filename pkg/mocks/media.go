package mocks

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/reelcut/pkg/ports"
)

// Video is an in-memory media file.
type Video struct {
	Info   ports.MediaInfo
	Frames []image.Image
}

// OpenCall records a call to Open.
type OpenCall struct {
	Path       string
	StartFrame int
}

// CreateCall records a call to Create.
type CreateCall struct {
	Path    string
	Profile ports.Profile
	Options ports.EncoderOptions
}

// MediaStore is an in-memory implementation of ports.VideoDecoder and
// ports.VideoEncoder. Files written through Create become readable after
// Close, so whole pipelines can run against it.
type MediaStore struct {
	mu     sync.Mutex
	videos map[string]*Video

	// Per-path failures.
	ProbeErr  map[string]error
	OpenErr   map[string]error
	CreateErr map[string]error
	// ReadErrAt makes ReadFrame fail after the given number of frames.
	ReadErrAt map[string]int
	// OpenFailAfter makes Open fail for a path once it was opened this many times.
	OpenFailAfter map[string]int

	// Recorded calls for verification
	ProbeCalls  []string
	OpenCalls   []OpenCall
	CreateCalls []CreateCall
	Aborted     []string

	openCount   map[string]int
	openReaders int
	openWriters int
}

// NewMediaStore creates an empty MediaStore.
func NewMediaStore() *MediaStore {
	return &MediaStore{
		videos:        make(map[string]*Video),
		ProbeErr:      make(map[string]error),
		OpenErr:       make(map[string]error),
		CreateErr:     make(map[string]error),
		ReadErrAt:     make(map[string]int),
		OpenFailAfter: make(map[string]int),
		openCount:     make(map[string]int),
	}
}

// NewFrame returns a solid frame whose color encodes index, see FrameIndex.
func NewFrame(width, height, index int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := color.RGBA{R: uint8(index % 256), G: uint8(index / 256 % 256), B: 128, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// FrameIndex decodes the index written by NewFrame.
func FrameIndex(img image.Image) int {
	b := img.Bounds()
	r, g, _, _ := img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).RGBA()
	return int(r>>8) + int(g>>8)*256
}

// AddVideo stores a video of n frames numbered 0..n-1.
func (m *MediaStore) AddVideo(path string, width, height int, fps float64, n int) *Video {
	frames := make([]image.Image, n)
	for i := range frames {
		frames[i] = NewFrame(width, height, i)
	}
	v := &Video{
		Info: ports.MediaInfo{
			Width:       width,
			Height:      height,
			FPS:         fps,
			FrameCount:  n,
			DurationSec: float64(n) / fps,
			VideoCodec:  "h264",
			HasVideo:    true,
			HasAudio:    true,
		},
		Frames: frames,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[path] = v
	return v
}

// AddAudio stores an audio-only file.
func (m *MediaStore) AddAudio(path string, durationSec float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[path] = &Video{Info: ports.MediaInfo{DurationSec: durationSec, HasAudio: true}}
}

// Put stores v at path, replacing any existing file.
func (m *MediaStore) Put(path string, v *Video) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[path] = v
}

// Get returns a stored file.
func (m *MediaStore) Get(path string) (*Video, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[path]
	return v, ok
}

// Has reports whether path exists in the store.
func (m *MediaStore) Has(path string) bool {
	_, ok := m.Get(path)
	return ok
}

// OpenHandles returns the number of readers and writers not yet released.
func (m *MediaStore) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openReaders + m.openWriters
}

func (m *MediaStore) Probe(ctx context.Context, path string) (ports.MediaInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbeCalls = append(m.ProbeCalls, path)
	if err := m.ProbeErr[path]; err != nil {
		return ports.MediaInfo{}, err
	}
	v, ok := m.videos[path]
	if !ok {
		return ports.MediaInfo{}, fmt.Errorf("%w: %s", ports.ErrSourceUnavailable, path)
	}
	return v.Info, nil
}

func (m *MediaStore) Open(ctx context.Context, path string, startFrame int) (ports.FrameReader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OpenCalls = append(m.OpenCalls, OpenCall{Path: path, StartFrame: startFrame})
	if err := m.OpenErr[path]; err != nil {
		return nil, err
	}
	if limit, ok := m.OpenFailAfter[path]; ok && m.openCount[path] >= limit {
		return nil, fmt.Errorf("%w: %s", ports.ErrSourceUnavailable, path)
	}
	v, ok := m.videos[path]
	if !ok || !v.Info.HasVideo {
		return nil, fmt.Errorf("%w: %s", ports.ErrSourceUnavailable, path)
	}
	m.openCount[path]++
	m.openReaders++

	failAt := -1
	if n, ok := m.ReadErrAt[path]; ok {
		failAt = n
	}
	return &frameReader{store: m, video: v, pos: startFrame, failAt: failAt}, nil
}

func (m *MediaStore) Create(ctx context.Context, path string, profile ports.Profile, opts ports.EncoderOptions) (ports.FrameWriter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, CreateCall{Path: path, Profile: profile, Options: opts})
	if err := m.CreateErr[path]; err != nil {
		return nil, err
	}
	m.openWriters++
	return &frameWriter{store: m, path: path, profile: profile}, nil
}

type frameReader struct {
	store  *MediaStore
	video  *Video
	pos    int
	read   int
	failAt int
	closed bool
}

func (r *frameReader) Info() ports.MediaInfo {
	return r.video.Info
}

func (r *frameReader) ReadFrame() (image.Image, error) {
	if r.closed {
		return nil, fmt.Errorf("read after close")
	}
	if r.failAt >= 0 && r.read >= r.failAt {
		return nil, fmt.Errorf("decode error")
	}
	if r.pos >= len(r.video.Frames) {
		return nil, io.EOF
	}
	img := r.video.Frames[r.pos]
	r.pos++
	r.read++
	return img, nil
}

func (r *frameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.store.mu.Lock()
	r.store.openReaders--
	r.store.mu.Unlock()
	return nil
}

type frameWriter struct {
	store   *MediaStore
	path    string
	profile ports.Profile
	frames  []image.Image
	done    bool
}

func (w *frameWriter) WriteFrame(img image.Image) error {
	if w.done {
		return fmt.Errorf("write after close")
	}
	b := img.Bounds()
	if b.Dx() != w.profile.Width || b.Dy() != w.profile.Height {
		return fmt.Errorf("%w: got %dx%d", ports.ErrFrameSizeMismatch, b.Dx(), b.Dy())
	}
	w.frames = append(w.frames, img)
	return nil
}

func (w *frameWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.openWriters--
	w.store.videos[w.path] = &Video{
		Info: ports.MediaInfo{
			Width:       w.profile.Width,
			Height:      w.profile.Height,
			FPS:         w.profile.FPS,
			FrameCount:  len(w.frames),
			DurationSec: float64(len(w.frames)) / w.profile.FPS,
			VideoCodec:  w.profile.Codec,
			HasVideo:    true,
		},
		Frames: w.frames,
	}
	return nil
}

func (w *frameWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.openWriters--
	w.store.Aborted = append(w.store.Aborted, w.path)
}

var (
	_ ports.VideoDecoder = (*MediaStore)(nil)
	_ ports.VideoEncoder = (*MediaStore)(nil)
)
