package services

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// IndexJob carries what the resume index needs after a record is stored.
type IndexJob struct {
	RecordID  uuid.UUID
	UserID    string
	FileName  string
	Text      string
	PrunedIDs []uuid.UUID
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	// EnqueueJob never blocks; it reports false when the job was dropped.
	EnqueueJob(job IndexJob) bool
}

type worker struct {
	indexer     ResumeIndexer
	jobQueue    chan IndexJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewWorker(indexer ResumeIndexer, concurrency, queueSize int) Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &worker{
		indexer:     indexer,
		jobQueue:    make(chan IndexJob, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting index worker with %d goroutines\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Index worker stopped")
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(job IndexJob) bool {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, dropping index job %s\n", job.RecordID)
		return false
	default:
	}

	select {
	case w.jobQueue <- job:
		return true
	default:
		log.Printf("⚠️  Index queue full, dropping job %s\n", job.RecordID)
		return false
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			if err := w.indexer.Index(ctx, job); err != nil {
				log.Printf("❌ Worker #%d failed to index record %s: %v\n", workerID, job.RecordID, err)
			} else {
				log.Printf("✅ Worker #%d indexed record %s\n", workerID, job.RecordID)
			}
		}
	}
}
