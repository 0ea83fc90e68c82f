package systems

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/containers"
	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/renderer/metadata"
)

/**
 * @brief A pool of workers running JobTask.OnStart. Outcomes are queued and
 * their callbacks run on whichever thread calls Update, so jobs may fetch
 * data off the main thread while GPU work stays on it.
 */
type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	results    *containers.RingQueue[metadata.JobResultEntry]
	wg         sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	jq := make(chan metadata.JobTask, channelSize)
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   jq,
		results:    containers.NewRingQueue[metadata.JobResultEntry](metadata.MAX_JOB_RESULTS),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.store(run(job))
			}
		}()
	}
}

// run executes the job, turning a panic into a failure.
func run(job metadata.JobTask) (entry metadata.JobResultEntry) {
	entry.Task = job
	defer func() {
		if r := recover(); r != nil {
			entry.Err = errors.Errorf("job panicked: %v", r)
		}
	}()
	if job.OnStart == nil {
		entry.Err = errors.New("job has no entry point")
		return entry
	}
	entry.Result, entry.Err = job.OnStart(job.InputParams)
	return entry
}

// store waits for room in the result queue; it only blocks while MAX_JOB_RESULTS outcomes are undelivered.
func (js *JobSystem) store(entry metadata.JobResultEntry) {
	for {
		if err := js.results.Enqueue(entry); err == nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their results are
 * delivered by the next Update.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	js.mu.Unlock()

	js.pending.Wait()
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle.
 * Runs the completion or failure callback of every finished job on the
 * calling thread.
 */
func (js *JobSystem) Update() {
	for {
		entry, err := js.results.Dequeue()
		if err != nil {
			return
		}
		if entry.Err != nil {
			core.LogError("job failed: %s", entry.Err)
			if entry.Task.OnFailure != nil {
				entry.Task.OnFailure(entry.Err)
			}
			continue
		}
		if entry.Task.OnComplete != nil {
			entry.Task.OnComplete(entry.Result)
		}
	}
}

// AddWorkNonBlocking adds work to the pool and returns immediately
func (js *JobSystem) AddWorkNonBlocking(jt metadata.JobTask) error {
	if !js.acquire() {
		return ErrJobSystemClosed
	}
	go func() {
		defer js.pending.Done()
		js.jobQueue <- jt
	}()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the job queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if !js.acquire() {
		return ErrJobSystemClosed
	}
	defer js.pending.Done()
	js.jobQueue <- jt
	return nil
}

func (js *JobSystem) acquire() bool {
	js.mu.Lock()
	defer js.mu.Unlock()
	if js.closed {
		return false
	}
	js.pending.Add(1)
	return true
}
