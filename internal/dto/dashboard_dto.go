package dto

import "time"

// ProgressSummary aggregates a student's standing across visible assignments.
type ProgressSummary struct {
	TotalAssignments int      `json:"total_assignments"`
	Submitted        int      `json:"submitted"`
	Graded           int      `json:"graded"`
	Pending          int      `json:"pending"`
	Overdue          int      `json:"overdue"`
	AverageGrade     *float64 `json:"average_grade"`
}

// AssignmentProgress reports one assignment's state for the dashboard.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"due_date"`
	MaxMarks     float64   `json:"max_marks"`
	Status       string    `json:"status"`
	SubmissionID *uint     `json:"submission_id"`
	IsLate       bool      `json:"is_late"`
	Grade        *float64  `json:"grade"`
	Feedback     string    `json:"feedback"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentDashboardResponse is the cached dashboard payload.
type StudentDashboardResponse struct {
	Summary     ProgressSummary      `json:"summary"`
	Assignments []AssignmentProgress `json:"assignments"`
	GeneratedAt time.Time            `json:"generated_at"`
}
