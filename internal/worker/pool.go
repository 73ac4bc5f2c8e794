// Package worker runs clip and analysis jobs on a fixed pool so a slow
// yt-dlp or ffmpeg invocation never blocks HTTP request handling.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of work the pool can execute. Execute must honor ctx
// cancellation so a stuck external process can be reaped at shutdown.
type Job interface {
	ID() string
	Execute(ctx context.Context) error
}

// Worker pulls jobs from its own channel after registering it with the
// shared worker pool.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan struct{}
	wg         *sync.WaitGroup
	log        *logrus.Logger
}

// NewWorker creates a worker bound to the dispatcher's pool.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, log *logrus.Logger) Worker {
	return Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan struct{}),
		wg:         wg,
		log:        log,
	}
}

// Start makes the worker listen for jobs until stopped.
func (w Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Re-register for the next job.
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				logger := w.log.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID()})
				logger.Info("job started")
				if err := job.Execute(ctx); err != nil {
					logger.WithError(err).Error("job failed")
				} else {
					logger.Info("job finished")
				}
			case <-w.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop signals the worker to exit after its current job.
func (w Worker) Stop() {
	close(w.quit)
}

// Dispatcher owns the job queue and a pool of workers.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []Worker
	wg         sync.WaitGroup
	quit       chan struct{}
	log        *logrus.Logger
}

// NewDispatcher creates a dispatcher with the given pool and queue sizes.
func NewDispatcher(maxWorkers, jobQueueSize int, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, jobQueueSize),
		workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the workers and the dispatch loop. ctx cancellation stops
// everything; jobs in flight get the same ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.WithField("workers", d.maxWorkers).Info("dispatcher starting")
	for i := 1; i <= d.maxWorkers; i++ {
		worker := NewWorker(i, d.workerPool, &d.wg, d.log)
		d.workers = append(d.workers, worker)
		worker.Start(ctx)
	}
	go d.dispatch(ctx)
}

func (d *Dispatcher) dispatch(ctx context.Context) {
	for {
		select {
		case job := <-d.jobQueue:
			d.wg.Add(1)
			go func(job Job) {
				defer d.wg.Done()
				select {
				case jobChannel := <-d.workerPool:
					// The worker may have quit between registering its
					// channel and this send; never block on a channel
					// nobody reads anymore.
					select {
					case jobChannel <- job:
					case <-d.quit:
					case <-ctx.Done():
					}
				case <-d.quit:
				case <-ctx.Done():
				}
			}(job)
		case <-d.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// SubmitJob queues a job without blocking. It fails when the queue is
// full so callers can surface backpressure instead of hanging a request.
func (d *Dispatcher) SubmitJob(job Job) error {
	select {
	case d.jobQueue <- job:
		d.log.WithField("job_id", job.ID()).Info("job queued")
		return nil
	default:
		return fmt.Errorf("job queue full, cannot submit job %s", job.ID())
	}
}

// Stop shuts the dispatch loop down and waits for workers and in-flight
// dispatch goroutines to finish.
func (d *Dispatcher) Stop() {
	close(d.quit)
	for _, worker := range d.workers {
		worker.Stop()
	}
	d.wg.Wait()
	d.log.Info("dispatcher stopped")
}
