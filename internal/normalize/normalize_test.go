package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"twintrack/internal/domain"
)

func intp(v int) *int { return &v }

func TestMaterialFieldFallbacks(t *testing.T) {
	m := Material(RawMaterial{
		MaterialID:    "m-1",
		MaterialName:  "Cement",
		TotalQuantity: intp(40),
		Unit:          "bag",
	})
	if m.ID != "m-1" {
		t.Fatalf("id = %q, want m-1", m.ID)
	}
	if m.Name != "Cement" {
		t.Fatalf("name = %q, want Cement", m.Name)
	}
	if m.Quantity != 40 {
		t.Fatalf("quantity = %d, want 40", m.Quantity)
	}
	if m.AvailableQuantity != 40 {
		t.Fatalf("availableQuantity = %d, want quantity fallback 40", m.AvailableQuantity)
	}
}

func TestMaterialDefaults(t *testing.T) {
	m := Material(RawMaterial{})
	if m.ID == "" {
		t.Fatal("expected a synthesized id for a material without one")
	}
	if m.Name != UnnamedMaterial {
		t.Fatalf("name = %q, want %q", m.Name, UnnamedMaterial)
	}
	if m.Quantity != 0 || m.AvailableQuantity != 0 {
		t.Fatalf("quantities = %d/%d, want 0/0", m.Quantity, m.AvailableQuantity)
	}
}

func TestMaterialIdempotent(t *testing.T) {
	first := Material(RawMaterial{ID: "m-2", Name: "Rebar", Quantity: intp(12), AvailableQuantity: intp(5)})
	again := Material(RawMaterial{
		MaterialID:        first.ID,
		Name:              first.Name,
		Quantity:          intp(first.Quantity),
		AvailableQuantity: intp(first.AvailableQuantity),
		Unit:              first.Unit,
	})
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("re-normalization changed the value: %+v vs %+v", first, again)
	}
}

func TestTaskDueDateVariants(t *testing.T) {
	withDeadline := Task(RawTask{ID: "t-1", DeadLine: "2026-09-01"})
	if withDeadline.DueDate != "2026-09-01" {
		t.Fatalf("due = %q, want deadLine value", withDeadline.DueDate)
	}
	withDue := Task(RawTask{ID: "t-2", DueDate: "2026-09-02"})
	if withDue.DueDate != "2026-09-02" {
		t.Fatalf("due = %q, want dueDate value", withDue.DueDate)
	}
	if withDue.AssignedWorkers == nil {
		t.Fatal("assignedWorkers must be non-nil")
	}
}

func TestAssignmentsRoleFromIsLead(t *testing.T) {
	view := AssignmentsView(RawAssignments{
		Supervisors: []RawAssignedSupervisor{
			{ID: "s-1", FirstName: "Ada", LastName: "Okafor", IsLead: true},
			{SupervisorID: "s-2", FullName: "Ben Caru", Role: "Assistant"},
		},
		Workers: []RawAssignedWorker{{ID: "w-1", FirstName: "Tess", LastName: "Iona"}},
	})
	if got := view.Supervisors[0]; got.SupervisorID != "s-1" || got.Role != domain.RoleLead || got.FullName != "Ada Okafor" {
		t.Fatalf("lead supervisor normalized wrong: %+v", got)
	}
	if got := view.Supervisors[1]; got.Role != domain.RoleAssistant {
		t.Fatalf("role = %q, want Assistant", got.Role)
	}
	if got := view.Workers[0]; got.WorkerID != "w-1" || got.FullName != "Tess Iona" {
		t.Fatalf("worker normalized wrong: %+v", got)
	}
}

func TestMediaURL(t *testing.T) {
	base := "https://api.twintrack.example"
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"https://cdn.example/p.jpg", "https://cdn.example/p.jpg"},
		{"uploads\\2026\\p.jpg", base + "/uploads/2026/p.jpg"},
		{"/uploads/p.jpg", base + "/uploads/p.jpg"},
	}
	for _, c := range cases {
		if got := MediaURL(c.in, base); got != c.want {
			t.Fatalf("MediaURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWorkLogPhotoShapes(t *testing.T) {
	base := "https://api.twintrack.example"
	asArray := WorkLog(RawWorkLog{ID: "l-1", PhotosUrls: json.RawMessage(`["a.jpg","b.jpg"]`)}, base)
	if len(asArray.PhotoURLs) != 2 || asArray.PhotoURLs[0] != base+"/a.jpg" {
		t.Fatalf("array photos = %v", asArray.PhotoURLs)
	}
	asString := WorkLog(RawWorkLog{ID: "l-2", PhotosUrls: json.RawMessage(`"c.jpg"`)}, base)
	if len(asString.PhotoURLs) != 1 || asString.PhotoURLs[0] != base+"/c.jpg" {
		t.Fatalf("string photo = %v", asString.PhotoURLs)
	}
	missing := WorkLog(RawWorkLog{ID: "l-3"}, base)
	if missing.PhotoURLs == nil || len(missing.PhotoURLs) != 0 {
		t.Fatalf("missing photos = %v, want empty slice", missing.PhotoURLs)
	}
}

func TestWorkLogNameFallbacks(t *testing.T) {
	log := WorkLog(RawWorkLog{
		ID:        "l-4",
		TaskID:    "t-9",
		ProjectID: "p-3",
		Task:      &namedRef{Name: "Pour footing"},
	}, "https://api.twintrack.example")
	if log.SubmissionID != "l-4" {
		t.Fatalf("submissionId = %q, want id fallback", log.SubmissionID)
	}
	if log.Type != "task" {
		t.Fatalf("type = %q, want task default", log.Type)
	}
	if log.TaskName != "Pour footing" {
		t.Fatalf("taskName = %q, want nested task name", log.TaskName)
	}
	if log.ProjectName != "p-3" {
		t.Fatalf("projectName = %q, want id fallback", log.ProjectName)
	}
}

func TestWorkerNameSources(t *testing.T) {
	fromParts := Worker(RawWorker{ID: "w-2", FirstName: "Mira", LastName: "Voss"})
	if fromParts.FullName != "Mira Voss" {
		t.Fatalf("fullName = %q", fromParts.FullName)
	}
	fromName := Worker(RawWorker{WorkerID: "w-3", Name: "Crew Member"})
	if fromName.ID != "w-3" || fromName.FullName != "Crew Member" {
		t.Fatalf("worker = %+v", fromName)
	}
}
