package dto

import (
	"time"

	"github.com/classboard/classboard-api/internal/models"
)

// AssignmentCreateRequest describes the payload for publishing an assignment.
type AssignmentCreateRequest struct {
	Title       string              `form:"title" json:"title" validate:"required,min=1,max=100"`
	Description string              `form:"description" json:"description" validate:"required,min=1,max=1000"`
	DueDate     string              `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Visibility  string              `form:"visibility" json:"visibility" validate:"omitempty,oneof=all individual"`
	StudentIDs  []uint              `form:"student_ids" json:"student_ids" validate:"omitempty,dive,gt=0"`
	MaxMarks    *float64            `form:"max_marks" json:"max_marks" validate:"omitempty,gte=1"`
	Attachments []AttachmentPayload `json:"attachments" validate:"omitempty,max=5,dive"`
}

// AssignmentUpdateRequest carries partial updates; only non-nil fields are
// applied. Attachments are appended to the existing list.
type AssignmentUpdateRequest struct {
	Title       *string             `form:"title" json:"title" validate:"omitempty,min=1,max=100"`
	Description *string             `form:"description" json:"description" validate:"omitempty,min=1,max=1000"`
	DueDate     *string             `form:"due_date" json:"due_date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Visibility  *string             `form:"visibility" json:"visibility" validate:"omitempty,oneof=all individual"`
	StudentIDs  []uint              `form:"student_ids" json:"student_ids" validate:"omitempty,dive,gt=0"`
	MaxMarks    *float64            `form:"max_marks" json:"max_marks" validate:"omitempty,gte=1"`
	Attachments []AttachmentPayload `json:"attachments" validate:"omitempty,max=5,dive"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	DueDate     time.Time            `json:"due_date"`
	Visibility  string               `json:"visibility"`
	MaxMarks    float64              `json:"max_marks"`
	CreatedBy   uint                 `json:"created_by"`
	Creator     UserLite             `json:"creator"`
	Students    []StudentResponse    `json:"students,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// AssignmentLite summarizes an assignment inside submission responses.
type AssignmentLite struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"due_date"`
	MaxMarks  float64   `json:"max_marks"`
	CreatedBy uint      `json:"created_by"`
}

// AssignmentDeleteResult reports a completed deletion together with any
// attachment blobs that could not be released.
type AssignmentDeleteResult struct {
	ID       uint     `json:"id"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		Visibility:  model.Visibility,
		MaxMarks:    model.MaxMarks,
		CreatedBy:   model.CreatedBy,
		Attachments: newAssignmentAttachmentResponses(model.Attachments),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}

	if model.Creator.ID != 0 {
		response.Creator = NewUserLite(model.Creator)
	}

	if model.Visibility == models.VisibilityIndividual {
		response.Students = NewStudentResponseSlice(model.Students)
	}

	return response
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
