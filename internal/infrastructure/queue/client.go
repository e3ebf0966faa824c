package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

type Client struct {
	client   *asynq.Client
	queue    string
	enqueued *prometheus.CounterVec
}

func NewClient(redisOpt asynq.RedisClientOpt, queueName string) *Client {
	return &Client{
		client: asynq.NewClient(redisOpt),
		queue:  queueName,
	}
}

// EnqueueSubmissionReviewed is deduplicated per submission for a day so a
// retried review request does not schedule twice.
func (c *Client) EnqueueSubmissionReviewed(ctx context.Context, payload SubmissionReviewedPayload) (*asynq.TaskInfo, error) {
	task, err := NewSubmissionReviewedTask(payload)
	if err != nil {
		return nil, err
	}
	info, err := c.client.EnqueueContext(
		ctx,
		task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.TaskID("reviewed:"+payload.SubmissionID.String()),
		asynq.Retention(24*time.Hour),
	)
	c.count(task.Type(), err)
	return info, err
}

func (c *Client) Enqueue(ctx context.Context, task *asynq.Task) (*asynq.TaskInfo, error) {
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(3))
	c.count(task.Type(), err)
	return info, err
}

// CountEnqueued makes successful enqueues increment counter{type}.
func (c *Client) CountEnqueued(counter *prometheus.CounterVec) {
	c.enqueued = counter
}

func (c *Client) count(taskType string, err error) {
	if err == nil && c.enqueued != nil {
		c.enqueued.WithLabelValues(taskType).Inc()
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}
