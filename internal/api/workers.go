package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"twintrack/internal/domain"
	"twintrack/internal/normalize"
)

// Workers lists the worker pool, paginated.
func (c *Client) Workers(ctx context.Context, page, pageSize int) ([]domain.Worker, error) {
	endpoint := fmt.Sprintf("api/v1/worker?page=%d&pageSize=%d", page, pageSize)
	var raw json.RawMessage
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawWorker](raw)
	if err != nil {
		return nil, err
	}
	return normalize.Workers(raws), nil
}

// WorkerHistory lists a worker's completed submissions.
func (c *Client) WorkerHistory(ctx context.Context, workerID string) ([]domain.HistoryEntry, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("api/v1/worker/%s/history", url.PathEscape(workerID)), &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawHistoryEntry](raw)
	if err != nil {
		return nil, err
	}
	return normalize.HistoryEntries(raws), nil
}

// SuspendWorker pauses a worker account.
func (c *Client) SuspendWorker(ctx context.Context, workerID string) error {
	return c.put(ctx, fmt.Sprintf("api/v1/worker/%s/suspend", url.PathEscape(workerID)), nil, nil)
}

// RetainWorker reactivates a suspended worker.
func (c *Client) RetainWorker(ctx context.Context, workerID string) error {
	return c.put(ctx, fmt.Sprintf("api/v1/worker/%s/retain", url.PathEscape(workerID)), nil, nil)
}

// RemoveWorkerFromProject drops a worker's project membership along
// with their task assignments there.
func (c *Client) RemoveWorkerFromProject(ctx context.Context, workerID, projectID string) error {
	endpoint := fmt.Sprintf("api/v1/worker/%s/project/%s", url.PathEscape(workerID), url.PathEscape(projectID))
	return c.delete(ctx, endpoint)
}

// RemoveWorkerTasks unassigns a batch of tasks for one worker within
// one project.
func (c *Client) RemoveWorkerTasks(ctx context.Context, workerID, projectID string, taskIDs []string) error {
	body := map[string]any{
		"workerId":  workerID,
		"projectId": projectID,
		"taskIds":   taskIDs,
	}
	return c.post(ctx, "api/v1/worker/tasks/remove", body, nil)
}

// ReturnRequest gives unused material back from a task.
type ReturnRequest struct {
	MaterialID   string `json:"materialId"`
	SupervisorID string `json:"supervisorId"`
	Quantity     int    `json:"quantity"`
	WorkerID     string `json:"workerId"`
	ProjectID    string `json:"projectId"`
	TaskID       string `json:"taskId"`
}

// ReturnMaterial returns unused quantity to the project inventory.
func (c *Client) ReturnMaterial(ctx context.Context, req ReturnRequest) error {
	return c.post(ctx, "api/v1/worker/return", req, nil)
}
