package orchestrate

import (
	"context"

	"github.com/sirupsen/logrus"

	"twintrack/internal/domain"
)

// ToggleWorkerSuspension suspends or retains a worker and returns the
// refreshed pool page.
func (o *Orchestrator) ToggleWorkerSuspension(ctx context.Context, workerID string, suspend bool) ([]domain.Worker, error) {
	if workerID == "" {
		return nil, &ValidationError{Reason: "worker id is required"}
	}
	release, err := o.begin("worker.suspension", workerID)
	if err != nil {
		return nil, err
	}
	defer release()

	if suspend {
		err = o.API.SuspendWorker(ctx, workerID)
	} else {
		err = o.API.RetainWorker(ctx, workerID)
	}
	if err != nil {
		return nil, err
	}
	o.Log.WithFields(logrus.Fields{"workerId": workerID, "suspended": suspend}).Info("worker suspension toggled")
	return o.API.Workers(ctx, 1, o.pageSize())
}

// ToggleSupervisorSuspension suspends or retains a supervisor and
// returns the refreshed listing.
func (o *Orchestrator) ToggleSupervisorSuspension(ctx context.Context, supervisorID string, suspend bool) ([]domain.Supervisor, error) {
	if supervisorID == "" {
		return nil, &ValidationError{Reason: "supervisor id is required"}
	}
	release, err := o.begin("supervisor.suspension", supervisorID)
	if err != nil {
		return nil, err
	}
	defer release()

	if suspend {
		err = o.API.SuspendSupervisor(ctx, supervisorID)
	} else {
		err = o.API.RetainSupervisor(ctx, supervisorID)
	}
	if err != nil {
		return nil, err
	}
	o.Log.WithFields(logrus.Fields{"supervisorId": supervisorID, "suspended": suspend}).Info("supervisor suspension toggled")
	return o.API.AssignedSupervisors(ctx, "")
}
