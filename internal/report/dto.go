// AngelaMos | 2026
// dto.go

package report

import (
	"time"
)

type DashboardResponse struct {
	Projects struct {
		Owned    map[string]int `json:"owned"`
		MemberOf map[string]int `json:"member_of"`
	} `json:"projects"`
	AssignedTasks struct {
		ByStatus   map[string]int `json:"by_status"`
		ByPriority map[string]int `json:"by_priority"`
		Overdue    int            `json:"overdue"`
	} `json:"assigned_tasks"`
	Planner     map[string]int `json:"planner"`
	Notes       int            `json:"notes"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type ProjectReportResponse struct {
	ProjectID         string         `json:"project_id"`
	TotalTasks        int            `json:"total_tasks"`
	ByStatus          map[string]int `json:"by_status"`
	ByPriority        map[string]int `json:"by_priority"`
	ByAssignee        map[string]int `json:"by_assignee"`
	CompletionPercent float64        `json:"completion_percent"`
	Overdue           int            `json:"overdue"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

type OverviewResponse struct {
	Users              int            `json:"users"`
	Admins             int            `json:"admins"`
	Projects           int            `json:"projects"`
	Tasks              int            `json:"tasks"`
	PlannerTasks       int            `json:"planner_tasks"`
	Notes              int            `json:"notes"`
	ActivityLogs       int            `json:"activity_logs"`
	PendingInvitations int            `json:"pending_invitations"`
	ProjectsByStatus   map[string]int `json:"projects_by_status"`
	TasksByStatus      map[string]int `json:"tasks_by_status"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

func ToDashboardResponse(d *Dashboard) DashboardResponse {
	var resp DashboardResponse
	resp.Projects.Owned = d.OwnedProjects
	resp.Projects.MemberOf = d.MemberProjects
	resp.AssignedTasks.ByStatus = d.AssignedByStatus
	resp.AssignedTasks.ByPriority = d.AssignedByPriority
	resp.AssignedTasks.Overdue = d.OverdueAssigned
	resp.Planner = d.PlannerByState
	resp.Notes = d.Notes
	resp.GeneratedAt = d.GeneratedAt
	return resp
}

func ToProjectReportResponse(p *ProjectReport) ProjectReportResponse {
	return ProjectReportResponse(*p)
}

func ToOverviewResponse(o *SystemOverview) OverviewResponse {
	return OverviewResponse{
		Users:              o.Users,
		Admins:             o.Admins,
		Projects:           o.Projects,
		Tasks:              o.Tasks,
		PlannerTasks:       o.PlannerTasks,
		Notes:              o.Notes,
		ActivityLogs:       o.ActivityLogs,
		PendingInvitations: o.PendingInvites,
		ProjectsByStatus:   o.ProjectsByStatus,
		TasksByStatus:      o.TasksByStatus,
		GeneratedAt:        o.GeneratedAt,
	}
}
