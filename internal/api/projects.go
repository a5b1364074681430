package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"twintrack/internal/domain"
	"twintrack/internal/normalize"
)

// Projects lists every project visible to the caller.
func (c *Client) Projects(ctx context.Context) ([]domain.Project, error) {
	return c.projectList(ctx, "api/v1/projects")
}

// MyProjects lists the projects the calling supervisor belongs to.
func (c *Client) MyProjects(ctx context.Context) ([]domain.Project, error) {
	return c.projectList(ctx, "api/v1/projects/my-projects")
}

func (c *Client) projectList(ctx context.Context, endpoint string) ([]domain.Project, error) {
	var raw json.RawMessage
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawProject](raw)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(raws))
	for _, r := range raws {
		out = append(out, normalize.Project(r))
	}
	return out, nil
}

// Project fetches one project by id.
func (c *Client) Project(ctx context.Context, id string) (domain.Project, error) {
	var raw normalize.RawProject
	if err := c.get(ctx, "api/v1/projects/"+url.PathEscape(id), &raw); err != nil {
		return domain.Project{}, err
	}
	return normalize.Project(raw), nil
}

// CreateProject registers a new project.
func (c *Client) CreateProject(ctx context.Context, name, location, description string) error {
	body := map[string]string{"name": name, "location": location, "description": description}
	return c.post(ctx, "api/v1/projects", body, nil)
}

// DeleteProject removes a project and its assignments.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.delete(ctx, "api/v1/projects/"+url.PathEscape(id))
}

// ProjectTasks lists a project's tasks.
func (c *Client) ProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("api/v1/projects/%s/tasks", url.PathEscape(projectID)), &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawTask](raw)
	if err != nil {
		return nil, err
	}
	return normalize.Tasks(raws), nil
}

// ProjectMaterials lists a project's material inventory.
func (c *Client) ProjectMaterials(ctx context.Context, projectID string) ([]domain.Material, error) {
	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("api/v1/projects/%s/materials", url.PathEscape(projectID)), &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawMaterial](raw)
	if err != nil {
		return nil, err
	}
	return normalize.Materials(raws), nil
}

// ProjectAssignments returns the project's supervisor and worker
// rosters.
func (c *Client) ProjectAssignments(ctx context.Context, projectID string) (domain.Assignments, error) {
	var raw normalize.RawAssignments
	if err := c.get(ctx, fmt.Sprintf("api/v1/projects/%s/assignments", url.PathEscape(projectID)), &raw); err != nil {
		return domain.Assignments{}, err
	}
	return normalize.AssignmentsView(raw), nil
}

// AssignWorkerToProject adds a worker to a project's roster.
func (c *Client) AssignWorkerToProject(ctx context.Context, projectID, workerID string) error {
	endpoint := fmt.Sprintf("api/v1/projects/%s/assign-worker?workerId=%s",
		url.PathEscape(projectID), url.QueryEscape(workerID))
	return c.post(ctx, endpoint, nil, nil)
}

// AssignSupervisor adds a supervisor to a project at the given role
// level (0 Lead, 1 Assistant, 2 Standard).
func (c *Client) AssignSupervisor(ctx context.Context, projectID, supervisorID string, level int) error {
	endpoint := fmt.Sprintf("api/v1/projects/%s/assign-supervisor?supervisorId=%s&level=%d",
		url.PathEscape(projectID), url.QueryEscape(supervisorID), level)
	return c.post(ctx, endpoint, nil, nil)
}
