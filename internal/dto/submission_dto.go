package dto

import (
	"time"

	"github.com/classboard/classboard-api/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting work.
type SubmissionCreateRequest struct {
	AssignmentID uint                `form:"assignment_id" json:"assignment_id" validate:"required,gt=0"`
	Content      string              `form:"content" json:"content" validate:"omitempty,max=2000"`
	Attachments  []AttachmentPayload `json:"attachments" validate:"omitempty,max=5,dive"`
}

// GradeSubmissionRequest carries a grade and optional feedback. The upper
// grade bound depends on the assignment and is checked by the service.
type GradeSubmissionRequest struct {
	Grade    *float64 `json:"grade" validate:"required,gte=0"`
	Feedback string   `json:"feedback" validate:"omitempty,max=500"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                 `json:"id"`
	AssignmentID uint                 `json:"assignment_id"`
	StudentID    uint                 `json:"student_id"`
	Content      string               `json:"content"`
	Attachments  []AttachmentResponse `json:"attachments"`
	SubmittedAt  time.Time            `json:"submitted_at"`
	IsLate       bool                 `json:"is_late"`
	Grade        *float64             `json:"grade"`
	Feedback     string               `json:"feedback"`
	Status       string               `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Assignment   AssignmentLite       `json:"assignment"`
	Student      UserLite             `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Content:      model.Content,
		Attachments:  newSubmissionAttachmentResponses(model.Attachments),
		SubmittedAt:  model.SubmittedAt,
		IsLate:       model.IsLate,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		Status:       model.Status,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:        model.Assignment.ID,
			Title:     model.Assignment.Title,
			DueDate:   model.Assignment.DueDate,
			MaxMarks:  model.Assignment.MaxMarks,
			CreatedBy: model.Assignment.CreatedBy,
		}
	}

	if model.Student.ID != 0 {
		response.Student = NewUserLite(model.Student)
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
