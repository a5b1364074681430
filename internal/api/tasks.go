package api

import (
	"context"
	"fmt"
	"net/url"

	"twintrack/internal/domain"
	"twintrack/internal/normalize"
)

// TaskCreateRequest creates a task inside a project.
type TaskCreateRequest struct {
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DeadLine    string `json:"deadLine"`
}

// CreateTask registers a new task.
func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) error {
	return c.post(ctx, "api/v1/task/create", req, nil)
}

// TaskDetails fetches one task with its worker roster and material
// allocations.
func (c *Client) TaskDetails(ctx context.Context, taskID string) (domain.Task, error) {
	var raw normalize.RawTask
	if err := c.get(ctx, fmt.Sprintf("api/v1/task/%s/details", url.PathEscape(taskID)), &raw); err != nil {
		return domain.Task{}, err
	}
	return normalize.Task(raw), nil
}

// AssignWorkerToTask puts a project-roster worker on a task.
func (c *Client) AssignWorkerToTask(ctx context.Context, taskID, workerID string) error {
	endpoint := fmt.Sprintf("api/v1/task/%s/assign/%s", url.PathEscape(taskID), url.PathEscape(workerID))
	return c.post(ctx, endpoint, nil, nil)
}

// AllocationRequest is one material line in an allocation call.
type AllocationRequest struct {
	MaterialID string `json:"materialId"`
	Quantity   int    `json:"quantity"`
}

// AssignTaskMaterials allocates project materials to a task.
func (c *Client) AssignTaskMaterials(ctx context.Context, taskID string, lines []AllocationRequest) error {
	endpoint := fmt.Sprintf("api/v1/task/%s/assign-materials", url.PathEscape(taskID))
	return c.post(ctx, endpoint, lines, nil)
}
