package workflow

import (
	"context"
	"sync"

	"github.com/leadflowhq/leadflow/internal/model"
)

// Handle is the observable side of an enqueued run.
type Handle struct {
	done   chan struct{}
	result model.WorkflowResult
	err    error
}

// Wait blocks until the run finishes and returns its outcome.
func (h *Handle) Wait() (model.WorkflowResult, error) {
	<-h.done
	return h.result, h.err
}

type job struct {
	workflow  *Workflow
	leadID    string
	ownerID   string
	startFrom model.Step
	handle    *Handle
}

// Pool executes enqueued workflow runs on a fixed set of workers.
// Submit before Start or after Stop is a programming error and panics.
type Pool struct {
	size    int
	mu      sync.Mutex
	jobs    chan job
	wg      sync.WaitGroup
	started bool
	stopped bool
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 4
	}
	return &Pool{size: size}
}

// Start launches the workers. Runs submitted afterwards execute under
// ctx.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.jobs = make(chan job, p.size*2)
	p.started = true
	p.stopped = false

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				j.handle.result, j.handle.err = j.workflow.Run(ctx, j.leadID, j.ownerID, j.startFrom)
				close(j.handle.done)
			}
		}()
	}
}

// Submit enqueues a run and returns a handle to wait on. Calling
// Submit on a pool that was never started, or was already stopped, is
// a bug in the caller, so it fails loudly instead of dropping the run.
func (p *Pool) Submit(w *Workflow, leadID, ownerID string, startFrom model.Step) *Handle {
	p.mu.Lock()
	started := p.started
	stopped := p.stopped
	jobs := p.jobs
	p.mu.Unlock()
	if !started {
		if stopped {
			panic("workflow: Submit after Stop")
		}
		panic("workflow: Submit before Start")
	}

	h := &Handle{done: make(chan struct{})}
	jobs <- job{workflow: w, leadID: leadID, ownerID: ownerID, startFrom: startFrom, handle: h}
	return h
}

// Stop drains the queue and waits for in-flight runs to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	close(p.jobs)
	p.started = false
	p.stopped = true
	p.mu.Unlock()

	p.wg.Wait()
}
