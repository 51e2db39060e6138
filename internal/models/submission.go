package models

import "time"

const (
	// SubmissionStatusSubmitted indicates the submission is awaiting grading.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusReturned is reserved for a return-for-revision workflow.
	// No current operation transitions into it.
	SubmissionStatusReturned = "returned"
)

// Submission represents a student's one-time response to an assignment.
// The composite unique index enforces one submission per student per
// assignment; concurrent submits race on the constraint, not on an
// application-level existence check.
type Submission struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	AssignmentID uint                   `gorm:"not null;uniqueIndex:uq_submissions_assignment_student" json:"assignment_id"`
	StudentID    uint                   `gorm:"not null;uniqueIndex:uq_submissions_assignment_student" json:"student_id"`
	Content      string                 `gorm:"size:2000" json:"content"`
	Attachments  []SubmissionAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments"`
	SubmittedAt  time.Time              `gorm:"not null" json:"submitted_at"`
	IsLate       bool                   `gorm:"not null" json:"is_late"`
	Grade        *float64               `json:"grade"`
	Feedback     string                 `gorm:"size:500" json:"feedback"`
	Status       string                 `gorm:"size:16;not null;default:submitted" json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Assignment   Assignment             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// SubmissionAttachment is a stored file linked to a submission.
type SubmissionAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	StorageID    string    `gorm:"size:255;not null" json:"storage_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
