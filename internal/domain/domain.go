package domain

// SupervisorRole is the role a supervisor holds on a single project.
type SupervisorRole string

const (
	RoleLead      SupervisorRole = "Lead"
	RoleAssistant SupervisorRole = "Assistant"
	RoleStandard  SupervisorRole = "Standard"
)

// Level returns the numeric level the backend expects for a role.
func (r SupervisorRole) Level() int {
	switch r {
	case RoleLead:
		return 0
	case RoleAssistant:
		return 1
	default:
		return 2
	}
}

// RoleFromLevel is the inverse of Level; unknown levels map to Standard.
func RoleFromLevel(level int) SupervisorRole {
	switch level {
	case 0:
		return RoleLead
	case 1:
		return RoleAssistant
	default:
		return RoleStandard
	}
}

// Project statuses as reported by the backend.
const (
	ProjectPending   = "Pending"
	ProjectActive    = "Active"
	ProjectCompleted = "Completed"
)

// Task statuses. Completed is only ever reached through supervisor review.
const (
	TaskPending    = "Pending"
	TaskInProgress = "InProgress"
	TaskCompleted  = "Completed"
)

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status"`
	StartDate   string     `json:"start_date,omitempty" format:"date-time"`
	Materials   []Material `json:"materials"`
}

type Task struct {
	ID              string       `json:"id"`
	ProjectID       string       `json:"project_id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	DueDate         string       `json:"due_date,omitempty" format:"date-time"`
	Status          string       `json:"status"`
	AssignedWorkers []string     `json:"assigned_workers"`
	Materials       []Allocation `json:"materials"`
}

// Material is a project-scoped stock line. Quantity is the total ever
// added; AvailableQuantity is what is left to allocate to tasks.
type Material struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	Unit              string `json:"unit,omitempty"`
}

// Allocation is a quantity of a material earmarked for one task,
// distinct from the material's project-wide availability.
type Allocation struct {
	MaterialID string `json:"material_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	Remaining  int    `json:"remaining"`
}

// Assignments is the per-project people view the backend returns as a
// single resource.
type Assignments struct {
	Supervisors []AssignedSupervisor `json:"supervisors"`
	Workers     []AssignedWorker     `json:"workers"`
}

type AssignedSupervisor struct {
	SupervisorID string         `json:"supervisor_id"`
	UserID       string         `json:"user_id,omitempty"`
	FullName     string         `json:"full_name"`
	Role         SupervisorRole `json:"role"`
}

type AssignedWorker struct {
	WorkerID string `json:"worker_id"`
	FullName string `json:"full_name"`
}

// Worker as listed for a supervisor, with the full project/task
// association tree used by the removal flow.
type Worker struct {
	ID        string          `json:"id"`
	FullName  string          `json:"full_name"`
	Suspended bool            `json:"suspended"`
	Projects  []WorkerProject `json:"projects"`
}

type WorkerProject struct {
	ProjectID      string       `json:"project_id"`
	ProjectName    string       `json:"project_name"`
	SupervisorName string       `json:"supervisor_name,omitempty"`
	Tasks          []WorkerTask `json:"tasks"`
}

type WorkerTask struct {
	TaskID   string `json:"task_id"`
	TaskName string `json:"task_name"`
}

type Supervisor struct {
	ID        string              `json:"id"`
	FullName  string              `json:"full_name"`
	Suspended bool                `json:"suspended"`
	Projects  []SupervisorProject `json:"projects"`
}

type SupervisorProject struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	IsLead      bool   `json:"is_lead"`
	CreatedBy   string `json:"created_by"`
}

// WorkLog is a pending submission awaiting supervisor review. Type is
// "task" or "project"; review is terminal either way.
type WorkLog struct {
	ID             string   `json:"id"`
	SubmissionID   string   `json:"submission_id"`
	Type           string   `json:"type"`
	WorkerFullName string   `json:"worker_full_name"`
	TaskID         string   `json:"task_id,omitempty"`
	TaskName       string   `json:"task_name,omitempty"`
	ProjectID      string   `json:"project_id,omitempty"`
	ProjectName    string   `json:"project_name,omitempty"`
	Description    string   `json:"description"`
	PhotoURLs      []string `json:"photo_urls"`
	Timestamp      string   `json:"timestamp" format:"date-time"`
	TaskStatus     string   `json:"task_status,omitempty"`
	ProjectStatus  string   `json:"project_status,omitempty"`
}

// ReviewStatus mirrors the underlying task or project status depending
// on the submission type.
func (w WorkLog) ReviewStatus() string {
	if w.Type == "task" {
		return w.TaskStatus
	}
	return w.ProjectStatus
}

// HistoryEntry is one completed item in a worker's history feed.
type HistoryEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	ProjectName string `json:"project_name,omitempty"`
	Status      string `json:"status"`
	CompletedAt string `json:"completed_at,omitempty" format:"date-time"`
}

// AnalyticsBucket is one time bucket of the dashboard series.
type AnalyticsBucket struct {
	Label               string `json:"label"`
	ProjectsCreated     int    `json:"projects_created"`
	TasksCreated        int    `json:"tasks_created"`
	ProjectsSubmitted   int    `json:"projects_submitted"`
	TasksSubmitted      int    `json:"tasks_submitted"`
	ProjectsApproved    int    `json:"projects_approved"`
	TasksApproved       int    `json:"tasks_approved"`
	ProjectsRejected    int    `json:"projects_rejected"`
	TasksRejected       int    `json:"tasks_rejected"`
	WorkerLogsCreated   int    `json:"worker_logs_created"`
	WorkerLogsSubmitted int    `json:"worker_logs_submitted"`
	WorkerLogsApproved  int    `json:"worker_logs_approved"`
	WorkerLogsRejected  int    `json:"worker_logs_rejected"`
}
