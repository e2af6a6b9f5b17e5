package mocks

import (
	"sync"

	"github.com/user/reelcut/pkg/ports"
)

// ProgressTask records the progress of one task.
type ProgressTask struct {
	Description string
	Total       int
	Count       int
	Finished    bool
}

// Progress is a mock implementation of ports.ProgressReporter.
type Progress struct {
	mu    sync.Mutex
	Tasks []*ProgressTask
}

func (p *Progress) Start(description string, total int) ports.ProgressTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := &ProgressTask{Description: description, Total: total}
	p.Tasks = append(p.Tasks, t)
	return &progressTask{owner: p, task: t}
}

type progressTask struct {
	owner *Progress
	task  *ProgressTask
}

func (t *progressTask) Add(n int) {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.task.Count += n
}

func (t *progressTask) Done() {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	t.task.Finished = true
}

var _ ports.ProgressReporter = (*Progress)(nil)
