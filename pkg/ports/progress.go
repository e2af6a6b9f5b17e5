package ports

// ProgressReporter displays progress of long frame-copy loops.
type ProgressReporter interface {
	// Start begins a task. total < 0 means the frame count is unknown.
	Start(description string, total int) ProgressTask
}

// ProgressTask is a single running progress display.
type ProgressTask interface {
	Add(n int)
	Done()
}
