// ABOUTME: Persist worker writes article content and highlight records in the background
// ABOUTME: Jobs for one article always land on the same worker so writes keep their order

package workers

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"highlights-app-api/core/interfaces"
)

// PersistJob is one write of an article's content and its derived records
type PersistJob struct {
	UserID     string
	ArticleID  string
	Content    string
	Highlights []domain.HighlightRecord

	// Done is called from the worker goroutine with nil or a PersistenceError
	Done func(error)
}

// PersistWorker manages background persistence of article content
type PersistWorker struct {
	store  interfaces.ArticleStore
	broker interfaces.ChangeBroker
	logger interfaces.Logger

	queues        []chan *PersistJob
	maxWorkers    int
	queueSize     int
	writeTimeout  time.Duration
	submitTimeout time.Duration
	wg            sync.WaitGroup
	mu            sync.RWMutex
	running       bool
}

// WorkerConfig holds configuration for the persist worker
type WorkerConfig struct {
	MaxWorkers    int
	QueueSize     int
	WriteTimeout  time.Duration
	SubmitTimeout time.Duration
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxWorkers:    4,
		QueueSize:     100,
		WriteTimeout:  10 * time.Second,
		SubmitTimeout: 5 * time.Second,
	}
}

// NewPersistWorker creates a new persist worker. broker may be nil.
func NewPersistWorker(store interfaces.ArticleStore, broker interfaces.ChangeBroker, logger interfaces.Logger, config WorkerConfig) *PersistWorker {
	def := DefaultWorkerConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = def.MaxWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.SubmitTimeout <= 0 {
		config.SubmitTimeout = def.SubmitTimeout
	}

	return &PersistWorker{
		store:         store,
		broker:        broker,
		logger:        logger,
		maxWorkers:    config.MaxWorkers,
		queueSize:     config.QueueSize,
		writeTimeout:  config.WriteTimeout,
		submitTimeout: config.SubmitTimeout,
	}
}

// Start starts the worker pool
func (pw *PersistWorker) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return nil
	}

	pw.queues = make([]chan *PersistJob, pw.maxWorkers)
	for i := range pw.queues {
		pw.queues[i] = make(chan *PersistJob, pw.queueSize)
		pw.wg.Add(1)
		go pw.run(pw.queues[i])
	}

	pw.running = true
	return nil
}

// Stop closes the queues and waits for queued writes to finish
func (pw *PersistWorker) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	for _, q := range pw.queues {
		close(q)
	}
	pw.wg.Wait()

	pw.running = false
	return nil
}

// Submit queues a job. It returns ErrQueueFull when the article's queue stays
// full for the submit timeout.
func (pw *PersistWorker) Submit(job *PersistJob) error {
	pw.mu.RLock()
	defer pw.mu.RUnlock()

	if !pw.running {
		return ErrWorkerNotRunning
	}

	q := pw.queues[pw.shard(job.UserID, job.ArticleID)]
	select {
	case q <- job:
		return nil
	case <-time.After(pw.submitTimeout):
		return ErrQueueFull
	}
}

func (pw *PersistWorker) shard(userID, articleID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(articleID))
	return int(h.Sum32() % uint32(len(pw.queues)))
}

// run is the main loop for each worker
func (pw *PersistWorker) run(queue <-chan *PersistJob) {
	defer pw.wg.Done()

	for job := range queue {
		err := pw.process(job)
		if job.Done != nil {
			job.Done(err)
		}
	}
}

// process writes a single job and announces the change
func (pw *PersistWorker) process(job *PersistJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), pw.writeTimeout)
	defer cancel()

	if err := pw.store.UpdateContent(ctx, job.UserID, job.ArticleID, job.Content, job.Highlights); err != nil {
		pw.logger.Error("Failed to persist article", map[string]interface{}{
			"user_id":    job.UserID,
			"article_id": job.ArticleID,
			"error":      err.Error(),
		})
		return &errors.PersistenceError{ArticleID: job.ArticleID, Err: err}
	}

	if pw.broker != nil {
		if err := pw.broker.Publish(ctx, job.UserID); err != nil {
			pw.logger.Warn("Failed to publish article change", map[string]interface{}{
				"user_id":    job.UserID,
				"article_id": job.ArticleID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "worker pool is not running"}
	ErrQueueFull        = &WorkerError{Message: "job queue is full"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
