package orchestrate

import (
	"context"
	"sort"

	"twintrack/internal/api"
	"twintrack/internal/domain"
	"twintrack/internal/engine"
	"twintrack/internal/gather"
)

// AssignWorkersToProject adds several workers to a project in one
// fan-out. Workers already on the roster are refused locally before
// any call goes out. The refreshed roster is returned even when some
// members failed; the *PartialBatchError then names them.
func (o *Orchestrator) AssignWorkersToProject(ctx context.Context, projectID string, workerIDs []string) (domain.Assignments, error) {
	if len(workerIDs) == 0 {
		return domain.Assignments{}, &ValidationError{Reason: "no workers selected"}
	}
	release, err := o.begin("project.assign-workers", projectID)
	if err != nil {
		return domain.Assignments{}, err
	}
	defer release()

	current, err := o.API.ProjectAssignments(ctx, projectID)
	if err != nil {
		return domain.Assignments{}, err
	}
	assigned := make(map[string]bool, len(current.Workers))
	for _, w := range current.Workers {
		assigned[w.WorkerID] = true
	}
	for _, id := range workerIDs {
		if assigned[id] {
			return domain.Assignments{}, &ValidationError{Reason: "worker " + id + " is already on this project"}
		}
	}

	failures := gather.Run(ctx, workerIDs, func(ctx context.Context, workerID string) error {
		return o.API.AssignWorkerToProject(ctx, projectID, workerID)
	})

	refreshed, refreshErr := o.API.ProjectAssignments(ctx, projectID)
	if len(failures) > 0 {
		return refreshed, &PartialBatchError{
			Action:    "assign workers",
			Completed: completedKeys(workerIDs, failures),
			Failures:  failures,
		}
	}
	return refreshed, refreshErr
}

// AssignWorkerToTask puts a worker on a task and returns the
// refreshed task.
func (o *Orchestrator) AssignWorkerToTask(ctx context.Context, taskID, workerID string) (domain.Task, error) {
	if taskID == "" || workerID == "" {
		return domain.Task{}, &ValidationError{Reason: "task id and worker id are required"}
	}
	release, err := o.begin("task.assign-worker", taskID)
	if err != nil {
		return domain.Task{}, err
	}
	defer release()

	if err := o.API.AssignWorkerToTask(ctx, taskID, workerID); err != nil {
		return domain.Task{}, err
	}
	return o.API.TaskDetails(ctx, taskID)
}

// AssignSupervisor adds a supervisor to a project in the requested
// role after checking the roster's slot rules, then returns the
// refreshed roster.
func (o *Orchestrator) AssignSupervisor(ctx context.Context, projectID, supervisorID string, role domain.SupervisorRole) (domain.Assignments, error) {
	if projectID == "" || supervisorID == "" {
		return domain.Assignments{}, &ValidationError{Reason: "project id and supervisor id are required"}
	}
	release, err := o.begin("project.assign-supervisor", projectID)
	if err != nil {
		return domain.Assignments{}, err
	}
	defer release()

	current, err := o.API.ProjectAssignments(ctx, projectID)
	if err != nil {
		return domain.Assignments{}, err
	}
	if err := engine.SupervisorSlot(current.Supervisors, supervisorID, role); err != nil {
		return domain.Assignments{}, validation(err)
	}
	if err := o.API.AssignSupervisor(ctx, projectID, supervisorID, role.Level()); err != nil {
		return domain.Assignments{}, err
	}
	return o.API.ProjectAssignments(ctx, projectID)
}

// RemoveSupervisorAssignments removes a batch of supervisor/project
// pairs. Every pair must pass the eligibility rules before the single
// batch call is issued; one ineligible pair refuses the whole batch
// locally.
func (o *Orchestrator) RemoveSupervisorAssignments(ctx context.Context, actorID string, pairs []engine.SupervisorRemoval) ([]domain.Supervisor, error) {
	if len(pairs) == 0 {
		return nil, validation(engine.ErrNothingSelected)
	}
	release, err := o.begin("supervisor.remove-assignments", actorID)
	if err != nil {
		return nil, err
	}
	defer release()

	supervisors, err := o.API.AssignedSupervisors(ctx, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Supervisor, len(supervisors))
	for _, s := range supervisors {
		byID[s.ID] = s
	}
	batch := engine.SupervisorRemovalBatch(pairs)
	for _, pair := range batch {
		sup, ok := byID[pair.SupervisorID]
		if !ok {
			return nil, &ValidationError{Reason: "unknown supervisor " + pair.SupervisorID}
		}
		var project *domain.SupervisorProject
		for i := range sup.Projects {
			if sup.Projects[i].ProjectID == pair.ProjectID {
				project = &sup.Projects[i]
				break
			}
		}
		if project == nil {
			return nil, &ValidationError{Reason: "supervisor " + pair.SupervisorID + " is not assigned to project " + pair.ProjectID}
		}
		if err := engine.RemovalEligibility(actorID, project.CreatedBy, sup.ID, project.IsLead); err != nil {
			return nil, validation(err)
		}
	}

	refs := make([]api.SupervisorAssignmentRef, 0, len(batch))
	for _, pair := range batch {
		refs = append(refs, api.SupervisorAssignmentRef{SupervisorID: pair.SupervisorID, ProjectID: pair.ProjectID})
	}
	if err := o.API.RemoveSupervisorAssignments(ctx, refs); err != nil {
		return nil, err
	}
	return o.API.AssignedSupervisors(ctx, "")
}

// RemoveWorkerAssignments executes a worker removal selection. The
// keys are classified first: a project batch fans out one DELETE per
// membership, a task batch posts one call per (worker, project)
// group, and a mixed selection is refused with no network traffic.
func (o *Orchestrator) RemoveWorkerAssignments(ctx context.Context, keys []string) ([]domain.Worker, error) {
	kind, sels, err := engine.ClassifySelection(keys)
	if err != nil {
		return nil, validation(err)
	}
	release, err := o.begin("worker.remove-assignments", "batch")
	if err != nil {
		return nil, err
	}
	defer release()

	var failures []gather.Failure
	var completed []string
	switch kind {
	case engine.ProjectBatch:
		removals := engine.SplitProjectSelection(sels)
		memberKeys := make([]string, 0, len(removals))
		byKey := make(map[string]engine.ProjectRemoval, len(removals))
		for _, r := range removals {
			k := engine.SelectionKey(r.WorkerID, r.ProjectID, "")
			memberKeys = append(memberKeys, k)
			byKey[k] = r
		}
		failures = gather.Run(ctx, memberKeys, func(ctx context.Context, key string) error {
			r := byKey[key]
			return o.API.RemoveWorkerFromProject(ctx, r.WorkerID, r.ProjectID)
		})
		completed = completedKeys(memberKeys, failures)
	case engine.TaskBatch:
		for _, group := range engine.SplitTaskSelection(sels) {
			groupKey := engine.SelectionKey(group.WorkerID, group.ProjectID, "")
			if err := o.API.RemoveWorkerTasks(ctx, group.WorkerID, group.ProjectID, group.TaskIDs); err != nil {
				failures = append(failures, gather.Failure{Key: groupKey, Err: err})
				continue
			}
			completed = append(completed, groupKey)
		}
	}

	refreshed, refreshErr := o.API.Workers(ctx, 1, o.pageSize())
	if len(failures) > 0 {
		return refreshed, &PartialBatchError{Action: "remove assignments", Completed: completed, Failures: failures}
	}
	return refreshed, refreshErr
}

func completedKeys(all []string, failures []gather.Failure) []string {
	failed := make(map[string]bool, len(failures))
	for _, f := range failures {
		failed[f.Key] = true
	}
	completed := make([]string, 0, len(all))
	for _, k := range all {
		if !failed[k] {
			completed = append(completed, k)
		}
	}
	sort.Strings(completed)
	return completed
}
