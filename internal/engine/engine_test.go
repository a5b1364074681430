package engine_test

import (
	"errors"
	"reflect"
	"testing"

	"twintrack/internal/domain"
	"twintrack/internal/engine"
)

func TestAssignableWorkers(t *testing.T) {
	pool := []domain.Worker{{ID: "w-1"}, {ID: "w-2"}, {ID: "w-3"}}
	assigned := []domain.AssignedWorker{{WorkerID: "w-2"}}
	got := engine.AssignableWorkers(pool, assigned)
	if len(got) != 2 || got[0].ID != "w-1" || got[1].ID != "w-3" {
		t.Fatalf("assignable = %+v", got)
	}
	if all := engine.AssignableWorkers(pool, nil); len(all) != 3 {
		t.Fatalf("empty roster should leave pool intact, got %d", len(all))
	}
}

func TestSupervisorSlot(t *testing.T) {
	roster := []domain.AssignedSupervisor{
		{SupervisorID: "s-1", Role: domain.RoleLead},
		{SupervisorID: "s-2", Role: domain.RoleAssistant},
		{SupervisorID: "s-3", Role: domain.RoleStandard},
	}
	cases := []struct {
		name      string
		candidate string
		role      domain.SupervisorRole
		want      error
	}{
		{"second lead denied", "s-9", domain.RoleLead, engine.ErrLeadTaken},
		{"second assistant denied", "s-9", domain.RoleAssistant, engine.ErrAssistantTaken},
		{"standard always allowed", "s-9", domain.RoleStandard, nil},
		{"rejoin denied", "s-3", domain.RoleStandard, engine.ErrAlreadyAssigned},
		{"rejoin denied even for open slot", "s-1", domain.RoleAssistant, engine.ErrAlreadyAssigned},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := engine.SupervisorSlot(roster, c.candidate, c.role); !errors.Is(err, c.want) {
				t.Fatalf("err = %v, want %v", err, c.want)
			}
		})
	}
	if err := engine.SupervisorSlot(nil, "s-1", domain.RoleLead); err != nil {
		t.Fatalf("first lead on empty roster: %v", err)
	}
}

func TestRemovalEligibility(t *testing.T) {
	if err := engine.RemovalEligibility("u-1", "u-1", "s-2", true); !errors.Is(err, engine.ErrLeadNotRemovable) {
		t.Fatalf("lead removal: %v", err)
	}
	if err := engine.RemovalEligibility("u-1", "u-1", "s-2", false); err != nil {
		t.Fatalf("creator removal: %v", err)
	}
	if err := engine.RemovalEligibility("u-2", "u-1", "u-2", false); err != nil {
		t.Fatalf("self removal: %v", err)
	}
	if err := engine.RemovalEligibility("u-3", "u-1", "u-2", false); !errors.Is(err, engine.ErrNotAuthorized) {
		t.Fatalf("third party removal: %v", err)
	}
}

func TestClampAllocation(t *testing.T) {
	cases := []struct {
		requested, available, want int
	}{
		{5, 10, 5},
		{0, 10, 1},
		{-3, 10, 1},
		{15, 10, 10},
		{1, 0, 0},
		{1, 1, 1},
	}
	for _, c := range cases {
		if got := engine.ClampAllocation(c.requested, c.available); got != c.want {
			t.Fatalf("ClampAllocation(%d, %d) = %d, want %d", c.requested, c.available, got, c.want)
		}
	}
}

func TestDeriveAvailable(t *testing.T) {
	allocs := []domain.Allocation{{Quantity: 3}, {Quantity: 4}}
	if got, under := engine.DeriveAvailable(10, allocs); got != 3 || under {
		t.Fatalf("got %d underflow=%v", got, under)
	}
	if got, under := engine.DeriveAvailable(5, allocs); got != 0 || !under {
		t.Fatalf("overallocated data should floor to 0 with warning, got %d underflow=%v", got, under)
	}
	if got, under := engine.DeriveAvailable(7, nil); got != 7 || under {
		t.Fatalf("no allocations: got %d underflow=%v", got, under)
	}
}

func TestComputeRemaining(t *testing.T) {
	if got := engine.ComputeRemaining(10, 4); got != 6 {
		t.Fatalf("remaining = %d, want 6", got)
	}
	if got := engine.ComputeRemaining(4, 10); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
}

func TestMaterialState(t *testing.T) {
	if s := engine.MaterialState(10, 0); s != engine.Unallocated {
		t.Fatalf("state = %q", s)
	}
	if s := engine.MaterialState(10, 4); s != engine.PartiallyAllocated {
		t.Fatalf("state = %q", s)
	}
	if s := engine.MaterialState(10, 10); s != engine.FullyAllocated {
		t.Fatalf("state = %q", s)
	}
}

func TestClassifySelection(t *testing.T) {
	if _, _, err := engine.ClassifySelection(nil); !errors.Is(err, engine.ErrNothingSelected) {
		t.Fatalf("empty: %v", err)
	}

	kind, sels, err := engine.ClassifySelection([]string{"w-1::p-1", "w-1::p-2"})
	if err != nil || kind != engine.ProjectBatch || len(sels) != 2 {
		t.Fatalf("project batch: kind=%v sels=%v err=%v", kind, sels, err)
	}

	kind, sels, err = engine.ClassifySelection([]string{"w-1::p-1::t-1", "w-1::p-1::t-2"})
	if err != nil || kind != engine.TaskBatch || len(sels) != 2 {
		t.Fatalf("task batch: kind=%v sels=%v err=%v", kind, sels, err)
	}

	kind, _, err = engine.ClassifySelection([]string{"w-1::p-1", "w-1::p-1::t-1"})
	if !errors.Is(err, engine.ErrMixedSelection) || kind != engine.SelectionMixed {
		t.Fatalf("mixed: kind=%v err=%v", kind, err)
	}

	if _, _, err := engine.ClassifySelection([]string{"w-1"}); err == nil {
		t.Fatal("malformed key must error, not panic")
	}
	if _, _, err := engine.ClassifySelection([]string{"w-1::::t-1"}); err == nil {
		t.Fatal("empty middle segment must error")
	}
}

func TestSplitTaskSelection(t *testing.T) {
	sels := []engine.Selection{
		{WorkerID: "w-1", ProjectID: "p-1", TaskID: "t-1"},
		{WorkerID: "w-1", ProjectID: "p-1", TaskID: "t-2"},
		{WorkerID: "w-1", ProjectID: "p-1", TaskID: "t-1"},
		{WorkerID: "w-2", ProjectID: "p-1", TaskID: "t-3"},
	}
	got := engine.SplitTaskSelection(sels)
	want := []engine.TaskRemoval{
		{WorkerID: "w-1", ProjectID: "p-1", TaskIDs: []string{"t-1", "t-2"}},
		{WorkerID: "w-2", ProjectID: "p-1", TaskIDs: []string{"t-3"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %+v, want %+v", got, want)
	}
}

func TestSplitProjectSelection(t *testing.T) {
	sels := []engine.Selection{
		{WorkerID: "w-1", ProjectID: "p-1"},
		{WorkerID: "w-1", ProjectID: "p-2"},
		{WorkerID: "w-1", ProjectID: "p-1"},
	}
	got := engine.SplitProjectSelection(sels)
	want := []engine.ProjectRemoval{
		{WorkerID: "w-1", ProjectID: "p-1"},
		{WorkerID: "w-1", ProjectID: "p-2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("removals = %+v, want %+v", got, want)
	}
}

func TestSupervisorRemovalBatch(t *testing.T) {
	in := []engine.SupervisorRemoval{
		{SupervisorID: "s-1", ProjectID: "p-1"},
		{SupervisorID: "s-2", ProjectID: "p-1"},
		{SupervisorID: "s-1", ProjectID: "p-1"},
	}
	got := engine.SupervisorRemovalBatch(in)
	if len(got) != 2 || got[0].SupervisorID != "s-1" || got[1].SupervisorID != "s-2" {
		t.Fatalf("batch = %+v", got)
	}
}

func TestSnapshotAvailable(t *testing.T) {
	snap := engine.ProjectSnapshot{
		Materials: []domain.Material{{ID: "m-1", Quantity: 20}},
		Tasks: []domain.Task{
			{ID: "t-1", Materials: []domain.Allocation{{MaterialID: "m-1", Quantity: 8}}},
			{ID: "t-2", Materials: []domain.Allocation{{MaterialID: "m-1", Quantity: 5}, {MaterialID: "m-2", Quantity: 99}}},
		},
	}
	if got, under := snap.Available("m-1"); got != 7 || under {
		t.Fatalf("available = %d underflow=%v", got, under)
	}
	if got, under := snap.Available("m-2"); got != 0 || !under {
		t.Fatalf("unknown material with allocations should underflow, got %d %v", got, under)
	}
}
