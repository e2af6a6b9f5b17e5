package timecode

import (
	"math"
	"testing"
)

func TestToSeconds(t *testing.T) {
	tests := []struct {
		frame int
		fps   float64
		want  float64
	}{
		{0, 30, 0.0},
		{300, 30, 10.0},
		{15, 30, 0.5},
		{30000, 29.97, 1001.001001001001},
		{4050, 30, 135.0},
	}

	for _, tt := range tests {
		got := ToSeconds(tt.frame, tt.fps)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ToSeconds(%d, %v) = %v; want %v", tt.frame, tt.fps, got, tt.want)
		}
	}
}

func TestToFrame(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     float64
		want    int
	}{
		{0, 30, 0},
		{10, 30, 300},
		{0.5, 30, 15},
		{2.3, 10, 23},
		{-1, 30, 0},
		{1, 0, 0},
	}

	for _, tt := range tests {
		if got := ToFrame(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("ToFrame(%v, %v) = %d; want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestToFrameRoundTrip(t *testing.T) {
	for _, fps := range []float64{24, 25, 30, 60, 29.97} {
		for frame := 0; frame < 500; frame += 7 {
			if got := ToFrame(ToSeconds(frame, fps), fps); got != frame {
				t.Fatalf("round trip at %v fps: frame %d became %d", fps, frame, got)
			}
		}
	}
}

func TestFormatFFmpeg(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"Zero", 0, "00:00:00.000"},
		{"Ten seconds", 10, "00:00:10.000"},
		{"Third of a second truncates", 10.0 / 30, "00:00:00.333"},
		{"Two thirds truncates", 2.0 / 3, "00:00:00.666"},
		{"Float error", 2.3, "00:00:02.300"},
		{"One hour", 3600, "01:00:00.000"},
		{"Complex", 3661.5, "01:01:01.500"},
		{"Negative clamps", -5, "00:00:00.000"},
		{"Large", 359999.999, "99:59:59.999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatFFmpeg(tt.seconds); got != tt.want {
				t.Errorf("FormatFFmpeg(%v) = %s; want %s", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"0", 0, false},
		{"12.5", 12.5, false},
		{"01:30", 90, false},
		{"1:02:03", 3723, false},
		{"00:02:15.250", 135.25, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1:2:3:4", 0, true},
		{"00:75", 0, true},
		{"-3", 0, true},
		{"1:-2", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseTimestamp(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
