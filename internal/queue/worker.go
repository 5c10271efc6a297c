package queue

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Worker pops jobs from the registered queues and dispatches them to
// their handlers. Failed jobs are re-pushed until MaxRetries is spent.
type Worker struct {
	queue    *Queue
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorker creates a worker over the queue
func NewWorker(q *Queue) *Worker {
	return &Worker{
		queue:  q,
		stopCh: make(chan struct{}),
	}
}

// Start launches one consumer goroutine per registered queue
func (w *Worker) Start() {
	for queueName := range w.queue.handlers {
		w.wg.Add(1)
		go w.consume(queueName)
	}
	log.Printf("queue worker started for %d queue(s)", len(w.queue.handlers))
}

// Stop signals the consumers and waits for in-flight jobs to finish
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	log.Println("queue worker stopped")
}

func (w *Worker) consume(queueName string) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		ctx := context.Background()
		result, err := w.queue.client.BRPop(ctx, 2*time.Second, redisKey(queueName)).Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("queue %s: pop failed: %v", queueName, err)
				time.Sleep(time.Second)
			}
			continue
		}

		// BRPop returns [key, value]
		if len(result) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("queue %s: dropping undecodable job: %v", queueName, err)
			continue
		}

		w.process(ctx, queueName, job)
	}
}

func (w *Worker) process(ctx context.Context, queueName string, job Job) {
	handler := w.queue.handlers[queueName]

	w.queue.markJob(job.ID, JobStatusProcessing, "", job.RetryCount)

	if err := handler(ctx, job); err != nil {
		job.RetryCount++
		if job.RetryCount <= job.MaxRetries {
			log.Printf("queue %s: job %s failed (attempt %d/%d): %v",
				queueName, job.ID, job.RetryCount, job.MaxRetries, err)
			w.queue.markJob(job.ID, JobStatusPending, err.Error(), job.RetryCount)
			if jobBytes, marshalErr := json.Marshal(job); marshalErr == nil {
				w.queue.client.LPush(ctx, redisKey(queueName), jobBytes)
			}
			return
		}
		log.Printf("queue %s: job %s failed permanently: %v", queueName, job.ID, err)
		w.queue.markJob(job.ID, JobStatusFailed, err.Error(), job.RetryCount)
		return
	}

	w.queue.markJob(job.ID, JobStatusCompleted, "", job.RetryCount)
}
