// Package engine holds the pure reconciliation rules: assignment
// eligibility, quantity clamping, and batch admissibility. Nothing in
// here performs I/O; orchestrators feed it normalized snapshots and
// act on its decisions.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"twintrack/internal/domain"
)

var (
	ErrNothingSelected  = errors.New("nothing selected")
	ErrMixedSelection   = errors.New("selection mixes project and task entries")
	ErrAlreadyAssigned  = errors.New("already assigned to this project")
	ErrLeadTaken        = errors.New("project already has a Lead supervisor")
	ErrAssistantTaken   = errors.New("project already has an Assistant supervisor")
	ErrLeadNotRemovable = errors.New("Lead supervisors cannot be removed")
	ErrNotAuthorized    = errors.New("only the assignment creator or the supervisor themself can remove this assignment")
)

// AssignableWorkers returns the pool members not yet assigned to the
// project, preserving pool order.
func AssignableWorkers(pool []domain.Worker, assigned []domain.AssignedWorker) []domain.Worker {
	taken := make(map[string]bool, len(assigned))
	for _, a := range assigned {
		taken[a.WorkerID] = true
	}
	out := make([]domain.Worker, 0, len(pool))
	for _, w := range pool {
		if !taken[w.ID] {
			out = append(out, w)
		}
	}
	return out
}

// SupervisorSlot decides whether a candidate may join a project's
// supervisor roster in the given role. A project holds at most one
// Lead and at most one Assistant; Standard slots are unlimited.
func SupervisorSlot(existing []domain.AssignedSupervisor, candidateID string, role domain.SupervisorRole) error {
	for _, s := range existing {
		if s.SupervisorID == candidateID {
			return ErrAlreadyAssigned
		}
	}
	switch role {
	case domain.RoleLead:
		for _, s := range existing {
			if s.Role == domain.RoleLead {
				return ErrLeadTaken
			}
		}
	case domain.RoleAssistant:
		for _, s := range existing {
			if s.Role == domain.RoleAssistant {
				return ErrAssistantTaken
			}
		}
	}
	return nil
}

// RemovalEligibility decides whether actorID may remove subjectID's
// assignment. Lead entries are pinned; otherwise removal is allowed to
// the assignment's creator and to the supervisor removing themself.
func RemovalEligibility(actorID, creatorID, subjectID string, isLead bool) error {
	if isLead {
		return ErrLeadNotRemovable
	}
	if actorID != creatorID && actorID != subjectID {
		return ErrNotAuthorized
	}
	return nil
}

// ClampAllocation forces a requested quantity into [1, available].
// Callers apply it both while editing and again right before submit so
// a stale availability snapshot can never push a request over.
func ClampAllocation(requested, available int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > available {
		requested = available
	}
	return requested
}

// DeriveAvailable recomputes a material's free quantity from its total
// and the current allocations. Backend data can transiently imply a
// negative balance; that floors to zero and flags a warning instead of
// failing the view.
func DeriveAvailable(total int, allocations []domain.Allocation) (available int, underflow bool) {
	available = total
	for _, a := range allocations {
		available -= a.Quantity
	}
	if available < 0 {
		return 0, true
	}
	return available, false
}

// ComputeRemaining is assigned minus used, never negative.
func ComputeRemaining(assigned, used int) int {
	if used >= assigned {
		return 0
	}
	return assigned - used
}

// AllocationState is the derived lifecycle of a material's allocation.
type AllocationState string

const (
	Unallocated        AllocationState = "Unallocated"
	PartiallyAllocated AllocationState = "PartiallyAllocated"
	FullyAllocated     AllocationState = "FullyAllocated"
)

// MaterialState derives a material's allocation state from its total
// and allocated quantities. It is recomputed per call, never stored.
func MaterialState(total, allocated int) AllocationState {
	switch {
	case allocated <= 0:
		return Unallocated
	case allocated < total:
		return PartiallyAllocated
	default:
		return FullyAllocated
	}
}

// Selection is one parsed removal-selection key.
type Selection struct {
	WorkerID  string
	ProjectID string
	TaskID    string
}

// SelectionKind classifies a removal selection.
type SelectionKind int

const (
	SelectionEmpty SelectionKind = iota
	ProjectBatch
	TaskBatch
	SelectionMixed
)

// SelectionKey encodes a selection for a worker's project membership
// (2 parts) or one of their task assignments (3 parts).
func SelectionKey(workerID, projectID, taskID string) string {
	if taskID == "" {
		return workerID + "::" + projectID
	}
	return workerID + "::" + projectID + "::" + taskID
}

// ParseSelectionKey splits a key produced by SelectionKey.
func ParseSelectionKey(key string) (Selection, error) {
	parts := strings.Split(key, "::")
	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Selection{}, fmt.Errorf("malformed selection key %q", key)
		}
		return Selection{WorkerID: parts[0], ProjectID: parts[1]}, nil
	case 3:
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Selection{}, fmt.Errorf("malformed selection key %q", key)
		}
		return Selection{WorkerID: parts[0], ProjectID: parts[1], TaskID: parts[2]}, nil
	default:
		return Selection{}, fmt.Errorf("malformed selection key %q", key)
	}
}

// ClassifySelection determines what kind of batch a set of keys forms.
// A mix of project-level and task-level keys is refused outright so no
// partial removal is ever attempted.
func ClassifySelection(keys []string) (SelectionKind, []Selection, error) {
	if len(keys) == 0 {
		return SelectionEmpty, nil, ErrNothingSelected
	}
	sels := make([]Selection, 0, len(keys))
	projects, tasks := 0, 0
	for _, k := range keys {
		sel, err := ParseSelectionKey(k)
		if err != nil {
			return SelectionEmpty, nil, err
		}
		if sel.TaskID == "" {
			projects++
		} else {
			tasks++
		}
		sels = append(sels, sel)
	}
	if projects > 0 && tasks > 0 {
		return SelectionMixed, sels, ErrMixedSelection
	}
	if tasks > 0 {
		return TaskBatch, sels, nil
	}
	return ProjectBatch, sels, nil
}

// TaskRemoval is a per-(worker,project) group of task unassignments.
type TaskRemoval struct {
	WorkerID  string
	ProjectID string
	TaskIDs   []string
}

// SplitTaskSelection groups a task batch by worker and project,
// preserving first-seen order and dropping duplicate task ids.
func SplitTaskSelection(sels []Selection) []TaskRemoval {
	index := make(map[string]int)
	seen := make(map[string]bool)
	out := make([]TaskRemoval, 0, len(sels))
	for _, s := range sels {
		groupKey := s.WorkerID + "::" + s.ProjectID
		i, ok := index[groupKey]
		if !ok {
			i = len(out)
			index[groupKey] = i
			out = append(out, TaskRemoval{WorkerID: s.WorkerID, ProjectID: s.ProjectID})
		}
		taskKey := groupKey + "::" + s.TaskID
		if !seen[taskKey] {
			seen[taskKey] = true
			out[i].TaskIDs = append(out[i].TaskIDs, s.TaskID)
		}
	}
	return out
}

// ProjectRemoval is one worker-from-project removal.
type ProjectRemoval struct {
	WorkerID  string
	ProjectID string
}

// SplitProjectSelection dedupes a project batch preserving first-seen
// order.
func SplitProjectSelection(sels []Selection) []ProjectRemoval {
	seen := make(map[ProjectRemoval]bool)
	out := make([]ProjectRemoval, 0, len(sels))
	for _, s := range sels {
		r := ProjectRemoval{WorkerID: s.WorkerID, ProjectID: s.ProjectID}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// SupervisorRemoval is one supervisor-from-project removal.
type SupervisorRemoval struct {
	SupervisorID string
	ProjectID    string
}

// SupervisorRemovalBatch dedupes (supervisor, project) pairs
// preserving first-seen order.
func SupervisorRemovalBatch(sels []SupervisorRemoval) []SupervisorRemoval {
	seen := make(map[SupervisorRemoval]bool)
	out := make([]SupervisorRemoval, 0, len(sels))
	for _, s := range sels {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ProjectSnapshot is the merged read model for one project's detail
// view.
type ProjectSnapshot struct {
	Project     domain.Project
	Tasks       []domain.Task
	Assignments domain.Assignments
	Materials   []domain.Material
}

// Available recomputes a material's free quantity from the snapshot's
// current task allocations.
func (s ProjectSnapshot) Available(materialID string) (available int, underflow bool) {
	total := 0
	for _, m := range s.Materials {
		if m.ID == materialID {
			total = m.Quantity
			break
		}
	}
	var allocs []domain.Allocation
	for _, t := range s.Tasks {
		for _, a := range t.Materials {
			if a.MaterialID == materialID {
				allocs = append(allocs, a)
			}
		}
	}
	return DeriveAvailable(total, allocs)
}
