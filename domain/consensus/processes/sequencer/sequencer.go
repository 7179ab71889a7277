package sequencer

import (
	"context"
	"sync"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/pkg/errors"
)

// ErrSequencerStopped is returned for jobs submitted after Stop was called
var ErrSequencerStopped = errors.New("sequencer is stopped")

// JobFunc is a unit of work run with exclusive access to the node state
type JobFunc func(state *model.NodeState) error

type job struct {
	ctx    context.Context
	name   string
	fn     JobFunc
	result chan error
}

// Sequencer runs jobs one at a time on a single worker goroutine, in the
// order they were submitted. It is the only writer of the node state.
type Sequencer struct {
	state *model.NodeState

	jobs     chan *job
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Sequencer owning state and starts its worker
func New(state *model.NodeState) *Sequencer {
	s := &Sequencer{
		state: state,
		jobs:  make(chan *job),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	spawn(s.run)
	return s
}

// Execute blocks until fn ran on the worker and returns its error. If ctx
// is done before fn starts, fn is skipped and the context error is
// returned. A started fn always runs to completion.
func (s *Sequencer) Execute(ctx context.Context, name string, fn JobFunc) error {
	j := &job{
		ctx:    ctx,
		name:   name,
		fn:     fn,
		result: make(chan error, 1),
	}

	select {
	case <-s.quit:
		return errors.Wrapf(ErrSequencerStopped, "job %s", name)
	default:
	}

	select {
	case s.jobs <- j:
	case <-ctx.Done():
		log.Debugf("Job %s was cancelled while waiting for its turn", name)
		return errors.Wrapf(ctx.Err(), "job %s", name)
	case <-s.quit:
		return errors.Wrapf(ErrSequencerStopped, "job %s", name)
	}
	return <-j.result
}

// Stop rejects any further jobs and waits for the running job to finish
func (s *Sequencer) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

func (s *Sequencer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			log.Debugf("Sequencer stopped")
			return
		case j := <-s.jobs:
			j.result <- s.execute(j)
		}
	}
}

func (s *Sequencer) execute(j *job) error {
	if err := j.ctx.Err(); err != nil {
		log.Debugf("Skipping job %s: %s", j.name, err)
		return errors.Wrapf(err, "job %s", j.name)
	}
	onEnd := logger.LogAndMeasureExecutionTime(log, j.name)
	defer onEnd()

	return j.fn(s.state)
}
