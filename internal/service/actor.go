package service

import (
	"context"
	"io"

	"github.com/classboard/classboard-api/internal/models"
)

// Actor is the resolved caller identity handed down by the transport layer.
type Actor struct {
	ID   uint
	Role string
}

// IsTeacher reports whether the actor carries the teacher role.
func (a Actor) IsTeacher() bool { return a.Role == models.RoleTeacher }

// IsStudent reports whether the actor carries the student role.
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// AttachmentStore abstracts the external blob storage collaborator. Upload
// returns the stored URL and an opaque storage identifier used for release.
// Release failures on deletion are reported, never fatal.
type AttachmentStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (url string, storageID string, err error)
	Release(ctx context.Context, storageID string) error
}
