package sequencer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/pkg/errors"
)

func TestExecuteRunsJobsOneAtATime(t *testing.T) {
	s := New(&model.NodeState{})
	defer s.Stop()

	const jobCount = 50
	running := 0
	maxRunning := 0
	var lock sync.Mutex

	var wg sync.WaitGroup
	wg.Add(jobCount)
	for i := 0; i < jobCount; i++ {
		go func() {
			defer wg.Done()
			err := s.Execute(context.Background(), "count", func(state *model.NodeState) error {
				lock.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				lock.Unlock()

				time.Sleep(time.Millisecond)

				lock.Lock()
				running--
				lock.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("TestExecuteRunsJobsOneAtATime: Execute: %+v", err)
			}
		}()
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Fatalf("TestExecuteRunsJobsOneAtATime: %d jobs ran concurrently", maxRunning)
	}
}

func TestExecuteSharesState(t *testing.T) {
	state := &model.NodeState{}
	s := New(state)
	defer s.Stop()

	err := s.Execute(context.Background(), "load", func(state *model.NodeState) error {
		state.Loaded = true
		return nil
	})
	if err != nil {
		t.Fatalf("TestExecuteSharesState: Execute: %+v", err)
	}

	var loaded bool
	err = s.Execute(context.Background(), "read", func(state *model.NodeState) error {
		loaded = state.Loaded
		return nil
	})
	if err != nil {
		t.Fatalf("TestExecuteSharesState: Execute: %+v", err)
	}
	if !loaded {
		t.Fatalf("TestExecuteSharesState: the second job did not see the first job's change")
	}
}

func TestExecuteReturnsJobError(t *testing.T) {
	s := New(&model.NodeState{})
	defer s.Stop()

	jobErr := errors.New("job failed")
	err := s.Execute(context.Background(), "fail", func(*model.NodeState) error {
		return jobErr
	})
	if !errors.Is(err, jobErr) {
		t.Fatalf("TestExecuteReturnsJobError: expected %s, got %v", jobErr, err)
	}
}

func TestExecuteSkipsCancelledJobs(t *testing.T) {
	s := New(&model.NodeState{})
	defer s.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = s.Execute(context.Background(), "block", func(*model.NodeState) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	result := make(chan error, 1)
	go func() {
		result <- s.Execute(ctx, "cancelled", func(*model.NodeState) error {
			ran = true
			return nil
		})
	}()

	cancel()
	err := <-result
	close(release)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TestExecuteSkipsCancelledJobs: expected context.Canceled, got %v", err)
	}

	// Make sure the worker is idle before reading ran
	err = s.Execute(context.Background(), "sync", func(*model.NodeState) error { return nil })
	if err != nil {
		t.Fatalf("TestExecuteSkipsCancelledJobs: Execute: %+v", err)
	}
	if ran {
		t.Fatalf("TestExecuteSkipsCancelledJobs: a cancelled job ran")
	}
}

func TestStop(t *testing.T) {
	s := New(&model.NodeState{})
	s.Stop()

	err := s.Execute(context.Background(), "late", func(*model.NodeState) error {
		t.Fatalf("TestStop: a job ran after Stop")
		return nil
	})
	if !errors.Is(err, ErrSequencerStopped) {
		t.Fatalf("TestStop: expected ErrSequencerStopped, got %v", err)
	}

	// Stopping twice is fine
	s.Stop()
}
