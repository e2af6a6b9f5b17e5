package ports

import "errors"

var (
	// ErrSourceUnavailable is returned when a media path cannot be opened for reading.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrProfileMismatch is returned when merge inputs disagree on resolution or frame rate.
	ErrProfileMismatch = errors.New("resolution or frame rate mismatch")

	// ErrEmptyInput is returned when an operation receives no inputs.
	ErrEmptyInput = errors.New("empty input list")

	// ErrInvalidSegment is returned for a segment with start < 0 or end < start.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrInvalidScale is returned for a non-positive scale factor.
	ErrInvalidScale = errors.New("invalid scale factor")

	// ErrInvalidFPS is returned when a frame rate is required but not positive.
	ErrInvalidFPS = errors.New("invalid frame rate")

	// ErrDurationMismatch is returned when paired audio and video drift apart.
	ErrDurationMismatch = errors.New("audio/video duration mismatch")

	// ErrFrameSizeMismatch is returned when a frame does not fit the output profile.
	ErrFrameSizeMismatch = errors.New("frame size does not match output profile")

	// ErrToolFailed is wrapped by every *ToolError.
	ErrToolFailed = errors.New("external tool failed")
)
