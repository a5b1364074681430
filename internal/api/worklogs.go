package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"twintrack/internal/domain"
	"twintrack/internal/normalize"
)

// WorkLogs lists pending submissions awaiting review.
func (c *Client) WorkLogs(ctx context.Context) ([]domain.WorkLog, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "api/WorkerLogs/logs", &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawWorkLog](raw)
	if err != nil {
		return nil, err
	}
	return normalize.WorkLogs(raws, c.BaseURL), nil
}

// SubmissionRequest carries a completion report. PhotoURLs must
// already be uploaded; the backend stores them as-is.
type SubmissionRequest struct {
	Description string   `json:"Description"`
	PhotoURLs   []string `json:"PhotoUrls"`
}

// SubmitTask files a task completion for review.
func (c *Client) SubmitTask(ctx context.Context, taskID string, req SubmissionRequest) error {
	endpoint := fmt.Sprintf("api/v1/worker/tasks/%s/submit", url.PathEscape(taskID))
	return c.post(ctx, endpoint, req, nil)
}

// SubmitProject files a project completion for review.
func (c *Client) SubmitProject(ctx context.Context, projectID string, req SubmissionRequest) error {
	endpoint := fmt.Sprintf("api/v1/worker/projects/%s/submit", url.PathEscape(projectID))
	return c.post(ctx, endpoint, req, nil)
}
