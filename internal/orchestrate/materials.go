package orchestrate

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"twintrack/internal/api"
	"twintrack/internal/domain"
	"twintrack/internal/engine"
)

// AddProjectMaterial creates an inventory line and returns the
// refreshed inventory.
func (o *Orchestrator) AddProjectMaterial(ctx context.Context, projectID, name string, quantity int, unit string) ([]domain.Material, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Reason: "material name is required"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Reason: "quantity must be positive"}
	}
	release, err := o.begin("material.create", projectID+":"+name)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.API.CreateMaterial(ctx, projectID, name, quantity, unit); err != nil {
		return nil, err
	}
	return o.API.ProjectMaterials(ctx, projectID)
}

// IncreaseMaterial tops up a material and returns the refreshed
// inventory. The in-flight flag keeps a double confirm from sending
// the increase twice.
func (o *Orchestrator) IncreaseMaterial(ctx context.Context, projectID, materialID string, amount int) ([]domain.Material, error) {
	if amount <= 0 {
		return nil, &ValidationError{Reason: "amount must be positive"}
	}
	release, err := o.begin("material.increase", materialID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.API.IncreaseMaterial(ctx, materialID, amount); err != nil {
		return nil, err
	}
	return o.API.ProjectMaterials(ctx, projectID)
}

// UpdateMaterial sets a material's total quantity and returns the
// refreshed inventory.
func (o *Orchestrator) UpdateMaterial(ctx context.Context, projectID, materialID string, quantity int) ([]domain.Material, error) {
	if quantity < 0 {
		return nil, &ValidationError{Reason: "quantity cannot be negative"}
	}
	release, err := o.begin("material.update", materialID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := o.API.UpdateMaterial(ctx, materialID, quantity); err != nil {
		return nil, err
	}
	return o.API.ProjectMaterials(ctx, projectID)
}

// AssignMaterialsToTask allocates inventory lines to a task. Every
// requested quantity is clamped against the current availability
// right before the call, so a stale view can only shrink a request,
// never oversubscribe.
func (o *Orchestrator) AssignMaterialsToTask(ctx context.Context, projectID, taskID string, lines []api.AllocationRequest) (domain.Task, error) {
	if len(lines) == 0 {
		return domain.Task{}, &ValidationError{Reason: "no materials selected"}
	}
	release, err := o.begin("task.assign-materials", taskID)
	if err != nil {
		return domain.Task{}, err
	}
	defer release()

	inventory, err := o.API.ProjectMaterials(ctx, projectID)
	if err != nil {
		return domain.Task{}, err
	}
	available := make(map[string]int, len(inventory))
	for _, m := range inventory {
		available[m.ID] = m.AvailableQuantity
	}

	clamped := make([]api.AllocationRequest, 0, len(lines))
	for _, line := range lines {
		avail, ok := available[line.MaterialID]
		if !ok {
			return domain.Task{}, &ValidationError{Reason: "material " + line.MaterialID + " is not in this project's inventory"}
		}
		qty := engine.ClampAllocation(line.Quantity, avail)
		if qty <= 0 {
			return domain.Task{}, &ValidationError{Reason: "material " + line.MaterialID + " has no available quantity"}
		}
		if qty != line.Quantity {
			o.Log.WithFields(logrus.Fields{"materialId": line.MaterialID, "requested": line.Quantity, "clamped": qty}).
				Warn("allocation clamped to availability")
		}
		clamped = append(clamped, api.AllocationRequest{MaterialID: line.MaterialID, Quantity: qty})
	}

	if err := o.API.AssignTaskMaterials(ctx, taskID, clamped); err != nil {
		return domain.Task{}, err
	}
	return o.API.TaskDetails(ctx, taskID)
}

// ReturnMaterial gives unused quantity back to the project inventory.
func (o *Orchestrator) ReturnMaterial(ctx context.Context, req api.ReturnRequest) error {
	if req.MaterialID == "" || req.TaskID == "" {
		return &ValidationError{Reason: "material id and task id are required"}
	}
	if req.Quantity <= 0 {
		return &ValidationError{Reason: "quantity must be positive"}
	}
	release, err := o.begin("material.return", req.TaskID+":"+req.MaterialID)
	if err != nil {
		return err
	}
	defer release()

	return o.API.ReturnMaterial(ctx, req)
}
