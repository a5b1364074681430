package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"twintrack/internal/domain"
	"twintrack/internal/normalize"
)

// Supervisors lists every supervisor.
func (c *Client) Supervisors(ctx context.Context) ([]domain.Supervisor, error) {
	return c.supervisorList(ctx, "api/v1/supervisors")
}

// AssignedSupervisors lists supervisors with their project
// assignments. A non-empty userID scopes the listing to one account.
func (c *Client) AssignedSupervisors(ctx context.Context, userID string) ([]domain.Supervisor, error) {
	endpoint := "api/v1/supervisors/assigned"
	if userID != "" {
		endpoint += "?userId=" + url.QueryEscape(userID)
	}
	return c.supervisorList(ctx, endpoint)
}

// SupervisorWorkers lists the workers rostered on projects a
// supervisor oversees.
func (c *Client) SupervisorWorkers(ctx context.Context, supervisorID string) ([]domain.Worker, error) {
	endpoint := fmt.Sprintf("api/v1/worker/supervisor/%s/assigned", url.PathEscape(supervisorID))
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

func (c *Client) supervisorList(ctx context.Context, endpoint string) ([]domain.Supervisor, error) {
	var raw json.RawMessage
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawSupervisor](raw)
	if err != nil {
		return nil, err
	}
	return normalize.Supervisors(raws), nil
}

// SuspendSupervisor pauses a supervisor account.
func (c *Client) SuspendSupervisor(ctx context.Context, supervisorID string) error {
	return c.put(ctx, fmt.Sprintf("api/v1/supervisors/%s/suspend", url.PathEscape(supervisorID)), nil, nil)
}

// RetainSupervisor reactivates a suspended supervisor.
func (c *Client) RetainSupervisor(ctx context.Context, supervisorID string) error {
	return c.put(ctx, fmt.Sprintf("api/v1/supervisors/%s/retain", url.PathEscape(supervisorID)), nil, nil)
}

// SupervisorAssignmentRef identifies one supervisor/project pair.
type SupervisorAssignmentRef struct {
	SupervisorID string `json:"SupervisorId"`
	ProjectID    string `json:"ProjectId"`
}

// RemoveSupervisorAssignments removes a batch of supervisor
// assignments in one call.
func (c *Client) RemoveSupervisorAssignments(ctx context.Context, refs []SupervisorAssignmentRef) error {
	body := map[string]any{"Assignments": refs}
	return c.post(ctx, "api/v1/supervisors/projects/remove", body, nil)
}

// ReviewProjectSubmission approves or rejects a project submission.
func (c *Client) ReviewProjectSubmission(ctx context.Context, submissionID, status string) error {
	endpoint := fmt.Sprintf("api/v1/supervisors/projects/%s/review", url.PathEscape(submissionID))
	return c.post(ctx, endpoint, map[string]string{"status": status}, nil)
}

// ReviewTaskSubmission approves or rejects a task submission.
func (c *Client) ReviewTaskSubmission(ctx context.Context, submissionID, status string) error {
	endpoint := fmt.Sprintf("api/v1/supervisors/tasks/%s/review", url.PathEscape(submissionID))
	return c.post(ctx, endpoint, map[string]string{"status": status}, nil)
}
