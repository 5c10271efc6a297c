// Package queue implements a small Redis-list job queue with a
// database-backed job log. The lifecycle core never blocks on it; jobs
// carry side work such as document pre-screening.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxRetries is how often a failing job is retried before it is
// marked failed for good
const DefaultMaxRetries = 3

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job. Rows are kept after completion as an
// audit trail of side work.
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Queue      string          `json:"queue" gorm:"type:varchar(64);index"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status" gorm:"type:varchar(20)"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Handler is a function that processes a job
type Handler func(ctx context.Context, job Job) error

// Queue is a Redis-list backed job queue
type Queue struct {
	client   *redis.Client
	db       *gorm.DB
	handlers map[string]Handler
}

// NewQueue creates a new queue
func NewQueue(client *redis.Client, db *gorm.DB) *Queue {
	return &Queue{
		client:   client,
		db:       db,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler registers a handler for a queue name
func (q *Queue) RegisterHandler(queueName string, handler Handler) {
	q.handlers[queueName] = handler
}

// Enqueue serializes the payload, records the job and pushes it onto the
// Redis list. Returns the job id.
func (q *Queue) Enqueue(queueName string, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := Job{
		ID:         uuid.New(),
		Queue:      queueName,
		Payload:    payloadBytes,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := q.db.Create(&job).Error; err != nil {
		return "", fmt.Errorf("failed to record job: %w", err)
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx := context.Background()
	if err := q.client.LPush(ctx, redisKey(queueName), jobBytes).Err(); err != nil {
		return "", fmt.Errorf("failed to push job to queue: %w", err)
	}

	return job.ID.String(), nil
}

func (q *Queue) markJob(jobID uuid.UUID, status JobStatus, jobErr string, retryCount int) {
	q.db.Model(&Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"status":      status,
		"error":       jobErr,
		"retry_count": retryCount,
		"updated_at":  time.Now(),
	})
}

func redisKey(queueName string) string {
	return "starfinance:queue:" + queueName
}
