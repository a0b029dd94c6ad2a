package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSettlementIntegrity recomputes stored settlements and flags drift.
	TaskSettlementIntegrity = "settlement:integrity"
	// TaskReportWarmup precomputes the dashboard report caches.
	TaskReportWarmup = "reports:warmup"
	// TaskInvoicePrerender renders a sale invoice PDF ahead of download.
	TaskInvoicePrerender = "invoice:prerender"
)

// SettlementIntegrityPayload bounds the scan to a date range. Empty fields
// scan everything.
type SettlementIntegrityPayload struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// ReportWarmupPayload is empty; the job always warms the current period.
type ReportWarmupPayload struct{}

// InvoicePrerenderPayload names the sale to render.
type InvoicePrerenderPayload struct {
	SaleID int64 `json:"sale_id"`
}

// NewSettlementIntegrityTask constructs an Asynq task.
func NewSettlementIntegrityTask(payload SettlementIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettlementIntegrity, data), nil
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// NewInvoicePrerenderTask constructs an Asynq task.
func NewInvoicePrerenderTask(payload InvoicePrerenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoicePrerender, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueSettlementIntegrity enqueues an integrity scan.
func (c *Client) EnqueueSettlementIntegrity(ctx context.Context, payload SettlementIntegrityPayload) (*asynq.TaskInfo, error) {
	task, err := NewSettlementIntegrityTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueReportWarmup enqueues a report cache warmup.
func (c *Client) EnqueueReportWarmup(ctx context.Context) (*asynq.TaskInfo, error) {
	task, err := NewReportWarmupTask()
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueInvoicePrerender enqueues a PDF prerender for one sale.
func (c *Client) EnqueueInvoicePrerender(ctx context.Context, saleID int64) (*asynq.TaskInfo, error) {
	task, err := NewInvoicePrerenderTask(InvoicePrerenderPayload{SaleID: saleID})
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
