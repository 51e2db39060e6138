package dto

import (
	"time"

	"github.com/classboard/classboard-api/internal/models"
)

// AttachmentPayload is the stored-file triple the core consumes once the
// transport layer has uploaded the raw bytes.
type AttachmentPayload struct {
	Filename  string `json:"filename" validate:"required,max=255"`
	FileURL   string `json:"file_url" validate:"required,url,max=512"`
	StorageID string `json:"storage_id" validate:"required,max=255"`
}

// AttachmentResponse serializes a stored attachment.
type AttachmentResponse struct {
	ID        uint      `json:"id"`
	Filename  string    `json:"filename"`
	FileURL   string    `json:"file_url"`
	StorageID string    `json:"storage_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newAssignmentAttachmentResponses(attachments []models.AssignmentAttachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		responses = append(responses, AttachmentResponse{
			ID:        attachment.ID,
			Filename:  attachment.Filename,
			FileURL:   attachment.FileURL,
			StorageID: attachment.StorageID,
			CreatedAt: attachment.CreatedAt,
		})
	}

	return responses
}

func newSubmissionAttachmentResponses(attachments []models.SubmissionAttachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		responses = append(responses, AttachmentResponse{
			ID:        attachment.ID,
			Filename:  attachment.Filename,
			FileURL:   attachment.FileURL,
			StorageID: attachment.StorageID,
			CreatedAt: attachment.CreatedAt,
		})
	}

	return responses
}
