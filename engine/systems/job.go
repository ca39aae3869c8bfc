package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// JobSystem is a fixed pool of workers for CPU bound work such as decoding.
// Submit and Shutdown belong to the render thread; only the job bodies run
// on the workers.
type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup
	isClosed   bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
	}
	for i := 0; i < numWorkers; i++ {
		js.wg.Add(1)
		go js.worker()
	}
	return js, nil
}

func (js *JobSystem) worker() {
	defer js.wg.Done()
	for job := range js.jobQueue {
		runJob(job)
	}
}

// runJob executes one job and its callbacks. A panicking body, usually a
// decoder fed a corrupt file, is reported as a failure.
func runJob(job metadata.JobTask) {
	if job.OnCompletionCallback != nil {
		defer job.OnCompletionCallback()
	}

	err := startJob(job.OnStart)
	if err != nil {
		core.LogDebug("job failed: %s", err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

func startJob(start metadata.JobStart) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return start()
}

// Submit queues a job, blocking while the queue is full.
func (js *JobSystem) Submit(job metadata.JobTask) error {
	if js.isClosed {
		return fmt.Errorf("job system: %w", core.ErrObjectDisposed)
	}
	if job.OnStart == nil {
		return fmt.Errorf("job without an entry point: %w", core.ErrInvalidArgument)
	}
	js.jobQueue <- job
	return nil
}

// Workers is the size of the pool.
func (js *JobSystem) Workers() int {
	return js.numWorkers
}

/**
 * @brief Shuts the job system down, waiting for queued jobs to finish.
 */
func (js *JobSystem) Shutdown() error {
	if js.isClosed {
		return fmt.Errorf("job system: %w", core.ErrObjectDisposed)
	}
	js.isClosed = true
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}
