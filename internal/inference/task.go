package inference

import (
	"context"
	"sync"
)

// Event is a progress report from a background generation.
type Event struct {
	Step
}

// Task is a generation running on its own goroutine.
type Task struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}

	once   sync.Once
	result *Result
	err    error
}

// Start runs Generate in the background. Progress is delivered on Events,
// which is closed when the generation ends. Events are dropped if the
// consumer falls more than buffer steps behind.
func Start(ctx context.Context, e Engine, req *Request, buffer int) *Task {
	if buffer < 0 {
		buffer = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		events: make(chan Event, buffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		defer close(t.events)
		defer cancel()
		t.result, t.err = e.Generate(ctx, req, func(s Step) {
			select {
			case t.events <- Event{Step: s}:
			default:
			}
		})
	}()
	return t
}

// Start runs a generation on this engine in the background.
func (e *EngineImpl) Start(ctx context.Context, req *Request) *Task {
	buffer := 1
	if req != nil {
		buffer = max(req.Tokens, 1)
	}
	return Start(ctx, e, req, buffer)
}

func (t *Task) Events() <-chan Event { return t.events }

// Cancel stops the generation before its next step.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed when the generation has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the generation ends or ctx is done.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
