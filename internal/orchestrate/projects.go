package orchestrate

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"twintrack/internal/api"
	"twintrack/internal/domain"
	"twintrack/internal/engine"
	"twintrack/internal/gather"
)

// CreateProject registers a project and returns the refreshed listing.
func (o *Orchestrator) CreateProject(ctx context.Context, name, location, description string) ([]domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Reason: "project name is required"}
	}
	release, err := o.begin("project.create", name)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.API.CreateProject(ctx, name, location, description); err != nil {
		return nil, err
	}
	o.Log.WithField("project", name).Info("project created")
	return o.API.Projects(ctx)
}

// DeleteProject removes a project and returns the refreshed listing.
func (o *Orchestrator) DeleteProject(ctx context.Context, projectID string) ([]domain.Project, error) {
	if projectID == "" {
		return nil, &ValidationError{Reason: "project id is required"}
	}
	release, err := o.begin("project.delete", projectID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.API.DeleteProject(ctx, projectID); err != nil {
		return nil, err
	}
	o.Log.WithField("projectId", projectID).Info("project deleted")
	return o.API.Projects(ctx)
}

// CreateTask adds a task and returns the project's refreshed task
// list.
func (o *Orchestrator) CreateTask(ctx context.Context, req api.TaskCreateRequest) ([]domain.Task, error) {
	if req.ProjectID == "" {
		return nil, &ValidationError{Reason: "project id is required"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, &ValidationError{Reason: "task name is required"}
	}
	release, err := o.begin("task.create", req.ProjectID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.API.CreateTask(ctx, req); err != nil {
		return nil, err
	}
	o.Log.WithFields(logrus.Fields{"projectId": req.ProjectID, "task": req.Name}).Info("task created")
	return o.API.ProjectTasks(ctx, req.ProjectID)
}

// Snapshot assembles the project detail read model. The project
// itself is required; the dependent lists are fetched concurrently and
// a failed list degrades to empty with a logged warning.
func (o *Orchestrator) Snapshot(ctx context.Context, projectID string) (engine.ProjectSnapshot, error) {
	project, err := o.API.Project(ctx, projectID)
	if err != nil {
		return engine.ProjectSnapshot{}, err
	}
	snap := engine.ProjectSnapshot{Project: project}

	loaders := map[string]func(context.Context) error{
		"tasks": func(ctx context.Context) error {
			tasks, err := o.API.ProjectTasks(ctx, projectID)
			if err == nil {
				snap.Tasks = tasks
			}
			return err
		},
		"materials": func(ctx context.Context) error {
			materials, err := o.API.ProjectMaterials(ctx, projectID)
			if err == nil {
				snap.Materials = materials
			}
			return err
		},
		"assignments": func(ctx context.Context) error {
			assignments, err := o.API.ProjectAssignments(ctx, projectID)
			if err == nil {
				snap.Assignments = assignments
			}
			return err
		},
	}
	failures := gather.Run(ctx, []string{"tasks", "materials", "assignments"},
		func(ctx context.Context, key string) error { return loaders[key](ctx) })
	for _, f := range failures {
		o.Log.WithFields(logrus.Fields{"projectId": projectID, "resource": f.Key}).
			WithError(f.Err).Warn("snapshot resource unavailable")
	}
	return snap, nil
}
