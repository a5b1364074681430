// Package normalize converts the backend's wire DTOs into the
// canonical domain shapes. The backend is inconsistent about field
// naming (id vs materialId, quantity vs totalQuantity, relative vs
// absolute photo URLs), so every entity gets exactly one mapping
// function here instead of fallback chains at call sites.
//
// All functions are total: a malformed element degrades to documented
// defaults and never fails the collection, and normalizing an already
// canonical value is a no-op.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"twintrack/internal/domain"
)

// UnnamedMaterial is the display default for materials the backend
// returns without a name.
const UnnamedMaterial = "Unnamed Material"

// Raw wire shapes. Go's JSON decoding matches keys case-insensitively,
// which absorbs the backend's casing drift (Workers vs workers); the
// fields below only spell out genuinely different key names.

type RawProject struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Status      string        `json:"status"`
	StartDate   string        `json:"startDate"`
	Materials   []RawMaterial `json:"materials"`
}

type RawMaterial struct {
	MaterialID        string `json:"materialId"`
	ID                string `json:"id"`
	Name              string `json:"name"`
	MaterialName      string `json:"materialName"`
	Quantity          *int   `json:"quantity"`
	TotalQuantity     *int   `json:"totalQuantity"`
	AvailableQuantity *int   `json:"availableQuantity"`
	Unit              string `json:"unit"`
}

type RawAllocation struct {
	MaterialID string `json:"materialId"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Quantity   *int   `json:"quantity"`
	Remaining  *int   `json:"remaining"`
}

type RawTask struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"projectId"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	DeadLine        string          `json:"deadLine"`
	DueDate         string          `json:"dueDate"`
	Status          string          `json:"status"`
	AssignedWorkers []string        `json:"assignedWorkers"`
	Materials       []RawAllocation `json:"materials"`
}

type RawAssignments struct {
	Supervisors []RawAssignedSupervisor `json:"supervisors"`
	Workers     []RawAssignedWorker     `json:"workers"`
}

type RawAssignedSupervisor struct {
	SupervisorID string `json:"supervisorId"`
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	FullName     string `json:"fullName"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	IsLead       bool   `json:"isLead"`
}

type RawAssignedWorker struct {
	WorkerID  string `json:"workerId"`
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type RawWorker struct {
	WorkerID  string             `json:"workerId"`
	ID        string             `json:"id"`
	FullName  string             `json:"fullName"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Name      string             `json:"name"`
	Suspended bool               `json:"suspended"`
	Projects  []RawWorkerProject `json:"projects"`
}

type RawWorkerProject struct {
	ProjectID      string          `json:"projectId"`
	ProjectName    string          `json:"projectName"`
	SupervisorName string          `json:"supervisorName"`
	Tasks          []RawWorkerTask `json:"tasks"`
}

type RawWorkerTask struct {
	TaskID   string `json:"taskId"`
	ID       string `json:"id"`
	TaskName string `json:"taskName"`
	Name     string `json:"name"`
}

type RawSupervisor struct {
	SupervisorID string                 `json:"supervisorId"`
	ID           string                 `json:"id"`
	FullName     string                 `json:"fullName"`
	FirstName    string                 `json:"firstName"`
	LastName     string                 `json:"lastName"`
	Suspended    bool                   `json:"suspended"`
	Projects     []RawSupervisorProject `json:"projects"`
}

type RawSupervisorProject struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	IsLead      bool   `json:"isLead"`
	CreatedBy   string `json:"createdBy"`
}

type namedRef struct {
	Name string `json:"name"`
}

type RawWorkLog struct {
	ID             string          `json:"id"`
	SubmissionID   string          `json:"submissionId"`
	Type           string          `json:"type"`
	WorkerFullName string          `json:"workerFullName"`
	TaskID         string          `json:"taskId"`
	TaskName       string          `json:"taskName"`
	Task           *namedRef       `json:"task"`
	ProjectID      string          `json:"projectId"`
	ProjectName    string          `json:"projectName"`
	Project        *namedRef       `json:"project"`
	Description    string          `json:"description"`
	PhotosUrls     json.RawMessage `json:"photosUrls"`
	Timestamp      string          `json:"timestamp"`
	TaskStatus     string          `json:"taskStatus"`
	ProjectStatus  string          `json:"projectStatus"`
}

type RawHistoryEntry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	ProjectName string `json:"projectName"`
	Status      string `json:"status"`
	CompletedAt string `json:"completedAt"`
}

type RawAnalyticsBucket struct {
	Label               string `json:"label"`
	ProjectsCreated     int    `json:"projectsCreated"`
	TasksCreated        int    `json:"tasksCreated"`
	ProjectsSubmitted   int    `json:"projectsSubmitted"`
	TasksSubmitted      int    `json:"tasksSubmitted"`
	ProjectsApproved    int    `json:"projectsApproved"`
	TasksApproved       int    `json:"tasksApproved"`
	ProjectsRejected    int    `json:"projectsRejected"`
	TasksRejected       int    `json:"tasksRejected"`
	WorkerLogsCreated   int    `json:"workerLogsCreated"`
	WorkerLogsSubmitted int    `json:"workerLogsSubmitted"`
	WorkerLogsApproved  int    `json:"workerLogsApproved"`
	WorkerLogsRejected  int    `json:"workerLogsRejected"`
}

func Project(raw RawProject) domain.Project {
	return domain.Project{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Location:    raw.Location,
		Status:      raw.Status,
		StartDate:   raw.StartDate,
		Materials:   Materials(raw.Materials),
	}
}

func Material(raw RawMaterial) domain.Material {
	qty := intOr(raw.Quantity, intOr(raw.TotalQuantity, 0))
	return domain.Material{
		ID:                firstNonEmpty(raw.MaterialID, raw.ID, uuid.NewString()),
		Name:              firstNonEmpty(raw.Name, raw.MaterialName, UnnamedMaterial),
		Quantity:          qty,
		AvailableQuantity: intOr(raw.AvailableQuantity, qty),
		Unit:              raw.Unit,
	}
}

func Materials(raws []RawMaterial) []domain.Material {
	out := make([]domain.Material, 0, len(raws))
	for _, r := range raws {
		out = append(out, Material(r))
	}
	return out
}

func Allocation(raw RawAllocation) domain.Allocation {
	return domain.Allocation{
		MaterialID: firstNonEmpty(raw.MaterialID, raw.ID),
		Name:       firstNonEmpty(raw.Name, UnnamedMaterial),
		Quantity:   intOr(raw.Quantity, 0),
		Remaining:  intOr(raw.Remaining, 0),
	}
}

func Task(raw RawTask) domain.Task {
	allocs := make([]domain.Allocation, 0, len(raw.Materials))
	for _, m := range raw.Materials {
		allocs = append(allocs, Allocation(m))
	}
	return domain.Task{
		ID:              raw.ID,
		ProjectID:       raw.ProjectID,
		Name:            raw.Name,
		Description:     raw.Description,
		DueDate:         firstNonEmpty(raw.DeadLine, raw.DueDate),
		Status:          raw.Status,
		AssignedWorkers: emptyIfNil(raw.AssignedWorkers),
		Materials:       allocs,
	}
}

func Tasks(raws []RawTask) []domain.Task {
	out := make([]domain.Task, 0, len(raws))
	for _, r := range raws {
		out = append(out, Task(r))
	}
	return out
}

func AssignmentsView(raw RawAssignments) domain.Assignments {
	out := domain.Assignments{
		Supervisors: make([]domain.AssignedSupervisor, 0, len(raw.Supervisors)),
		Workers:     make([]domain.AssignedWorker, 0, len(raw.Workers)),
	}
	for _, s := range raw.Supervisors {
		role := domain.SupervisorRole(s.Role)
		if role == "" {
			role = domain.RoleStandard
			if s.IsLead {
				role = domain.RoleLead
			}
		}
		out.Supervisors = append(out.Supervisors, domain.AssignedSupervisor{
			SupervisorID: firstNonEmpty(s.SupervisorID, s.ID),
			UserID:       s.UserID,
			FullName:     fullName(s.FullName, s.FirstName, s.LastName),
			Role:         role,
		})
	}
	for _, w := range raw.Workers {
		out.Workers = append(out.Workers, domain.AssignedWorker{
			WorkerID: firstNonEmpty(w.WorkerID, w.ID),
			FullName: fullName(w.FullName, w.FirstName, w.LastName),
		})
	}
	return out
}

func Worker(raw RawWorker) domain.Worker {
	projects := make([]domain.WorkerProject, 0, len(raw.Projects))
	for _, p := range raw.Projects {
		tasks := make([]domain.WorkerTask, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			tasks = append(tasks, domain.WorkerTask{
				TaskID:   firstNonEmpty(t.TaskID, t.ID),
				TaskName: firstNonEmpty(t.TaskName, t.Name),
			})
		}
		projects = append(projects, domain.WorkerProject{
			ProjectID:      p.ProjectID,
			ProjectName:    p.ProjectName,
			SupervisorName: p.SupervisorName,
			Tasks:          tasks,
		})
	}
	name := fullName(raw.FullName, raw.FirstName, raw.LastName)
	if name == "" {
		name = raw.Name
	}
	return domain.Worker{
		ID:        firstNonEmpty(raw.WorkerID, raw.ID),
		FullName:  name,
		Suspended: raw.Suspended,
		Projects:  projects,
	}
}

func Workers(raws []RawWorker) []domain.Worker {
	out := make([]domain.Worker, 0, len(raws))
	for _, r := range raws {
		out = append(out, Worker(r))
	}
	return out
}

func Supervisor(raw RawSupervisor) domain.Supervisor {
	projects := make([]domain.SupervisorProject, 0, len(raw.Projects))
	for _, p := range raw.Projects {
		projects = append(projects, domain.SupervisorProject{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			IsLead:      p.IsLead,
			CreatedBy:   p.CreatedBy,
		})
	}
	return domain.Supervisor{
		ID:        firstNonEmpty(raw.SupervisorID, raw.ID),
		FullName:  fullName(raw.FullName, raw.FirstName, raw.LastName),
		Suspended: raw.Suspended,
		Projects:  projects,
	}
}

func Supervisors(raws []RawSupervisor) []domain.Supervisor {
	out := make([]domain.Supervisor, 0, len(raws))
	for _, r := range raws {
		out = append(out, Supervisor(r))
	}
	return out
}

// WorkLog normalizes a pending submission. baseURL anchors relative
// photo paths; the backend occasionally returns Windows-style
// separators and single-string photo fields.
func WorkLog(raw RawWorkLog, baseURL string) domain.WorkLog {
	log := domain.WorkLog{
		ID:             raw.ID,
		SubmissionID:   firstNonEmpty(raw.SubmissionID, raw.ID),
		Type:           firstNonEmpty(raw.Type, "task"),
		WorkerFullName: raw.WorkerFullName,
		TaskID:         raw.TaskID,
		ProjectID:      raw.ProjectID,
		Description:    raw.Description,
		PhotoURLs:      photoURLs(raw.PhotosUrls, baseURL),
		Timestamp:      raw.Timestamp,
		TaskStatus:     raw.TaskStatus,
		ProjectStatus:  raw.ProjectStatus,
	}
	log.TaskName = raw.TaskName
	if log.TaskName == "" && raw.Task != nil {
		log.TaskName = raw.Task.Name
	}
	if log.TaskName == "" {
		log.TaskName = raw.TaskID
	}
	log.ProjectName = raw.ProjectName
	if log.ProjectName == "" && raw.Project != nil {
		log.ProjectName = raw.Project.Name
	}
	if log.ProjectName == "" {
		log.ProjectName = raw.ProjectID
	}
	return log
}

func WorkLogs(raws []RawWorkLog, baseURL string) []domain.WorkLog {
	out := make([]domain.WorkLog, 0, len(raws))
	for _, r := range raws {
		out = append(out, WorkLog(r, baseURL))
	}
	return out
}

func HistoryEntry(raw RawHistoryEntry) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          raw.ID,
		Type:        firstNonEmpty(raw.Type, "task"),
		Name:        firstNonEmpty(raw.Name, raw.Title),
		ProjectName: raw.ProjectName,
		Status:      firstNonEmpty(raw.Status, domain.TaskCompleted),
		CompletedAt: raw.CompletedAt,
	}
}

func HistoryEntries(raws []RawHistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(raws))
	for _, r := range raws {
		out = append(out, HistoryEntry(r))
	}
	return out
}

func AnalyticsBucket(raw RawAnalyticsBucket) domain.AnalyticsBucket {
	return domain.AnalyticsBucket(raw)
}

func AnalyticsBuckets(raws []RawAnalyticsBucket) []domain.AnalyticsBucket {
	out := make([]domain.AnalyticsBucket, 0, len(raws))
	for _, r := range raws {
		out = append(out, AnalyticsBucket(r))
	}
	return out
}

// MediaURL absolutizes a photo reference against the API base and
// normalizes path separators. Empty input stays empty.
func MediaURL(raw, baseURL string) string {
	if raw == "" {
		return ""
	}
	u := raw
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(u, "/\\")
	}
	return strings.ReplaceAll(u, `\`, "/")
}

// photoURLs accepts either a JSON array of strings or a bare string.
func photoURLs(raw json.RawMessage, baseURL string) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, u := range many {
			if n := MediaURL(u, baseURL); n != "" {
				out = append(out, n)
			}
		}
		return out
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{MediaURL(one, baseURL)}
	}
	return []string{}
}

func fullName(full, first, last string) string {
	if full != "" {
		return full
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
