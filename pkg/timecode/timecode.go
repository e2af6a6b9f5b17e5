// Package timecode converts between frame indices, seconds and ffmpeg timestamps.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// epsilon absorbs float error such as 2.3*1000 == 2299.9999999999995.
const epsilon = 1e-6

// ToSeconds converts a frame index to seconds at the given frame rate.
// fps must be positive.
func ToSeconds(frame int, fps float64) float64 {
	return float64(frame) / fps
}

// ToFrame converts seconds to the index of the frame displayed at that time.
func ToFrame(seconds, fps float64) int {
	if seconds <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Floor(seconds*fps + epsilon))
}

// FormatFFmpeg renders seconds as HH:MM:SS.mmm for -ss/-to arguments.
//
// Milliseconds are truncated rather than rounded so that a seek to a frame
// boundary never lands after the frame itself.
//
//	FormatFFmpeg(0)        // "00:00:00.000"
//	FormatFFmpeg(10.0/30)  // "00:00:00.333"
//	FormatFFmpeg(3661.5)   // "01:01:01.500"
func FormatFFmpeg(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMs := int64(math.Floor(seconds*1000 + epsilon))
	hours := totalMs / 3_600_000
	minutes := (totalMs % 3_600_000) / 60_000
	secs := (totalMs % 60_000) / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms)
}

// ParseTimestamp parses HH:MM:SS[.fff], MM:SS[.fff] or raw seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got %q", s)
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		var v float64
		var err error
		if last {
			v, err = strconv.ParseFloat(part, 64)
		} else {
			var n int
			n, err = strconv.Atoi(part)
			v = float64(n)
		}
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got %q", s)
		}
		// minutes and seconds are bounded only below a higher unit
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("field %q out of range in %q", part, s)
		}
		total = total*60 + v
	}
	return total, nil
}
