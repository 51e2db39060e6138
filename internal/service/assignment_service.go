package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/repository"
)

// AssignmentService owns assignment records and answers visibility and
// ownership questions.
type AssignmentService interface {
	List(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) (dto.AssignmentDeleteResult, error)
	ListStudents(ctx context.Context, actor Actor) ([]dto.StudentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	validator   *validator.Validate
	store       AttachmentStore
	activity    ActivityRecorder
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds the assignment directory service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	store AttachmentStore,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		users:       users,
		validator:   validate,
		store:       store,
		activity:    activity,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, actor Actor) ([]dto.AssignmentResponse, error) {
	var (
		assignments []models.Assignment
		err         error
	)

	switch {
	case actor.IsTeacher():
		assignments, err = s.assignments.ListByCreator(ctx, actor.ID)
	case actor.IsStudent():
		assignments, err = s.assignments.ListVisibleToStudent(ctx, actor.ID)
	default:
		return nil, NewAccessDeniedError("unknown role")
	}

	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if actor.IsStudent() && !assignment.VisibleTo(actor.ID) {
		return dto.AssignmentResponse{}, NewAccessDeniedError("you are not assigned to this assignment")
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, NewAccessDeniedError("only teachers can create assignments")
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, validationError(err)
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, NewValidationError("due_date", "invalid timestamp")
	}

	if !dueDate.After(s.now()) {
		return dto.AssignmentResponse{}, NewValidationError("due_date", "must be in the future")
	}

	visibility := payload.Visibility
	if visibility == "" {
		visibility = models.VisibilityAll
	}

	maxMarks := 100.0
	if payload.MaxMarks != nil {
		maxMarks = *payload.MaxMarks
	}

	assignment := models.Assignment{
		Title:       s.sanitizer.Sanitize(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		DueDate:     dueDate,
		Visibility:  visibility,
		MaxMarks:    maxMarks,
		CreatedBy:   actor.ID,
		Attachments: assignmentAttachments(payload.Attachments),
	}

	if visibility == models.VisibilityIndividual {
		students, err := s.users.ListStudentsByIDs(ctx, payload.StudentIDs)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.Students = students
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assignment.created", assignment.ID, map[string]interface{}{
		"title":      assignment.Title,
		"visibility": assignment.Visibility,
		"due_date":   assignment.DueDate,
	})
	s.publishEvent(ctx, "assignment.created", dto.NewAssignmentResponse(assignment))

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("teacher_id", actor.ID).Msg("assignment created")

	created, err := s.loadAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.NewAssignmentResponse(assignment), nil
	}

	return dto.NewAssignmentResponse(created), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, validationError(err)
	}

	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !assignment.OwnedBy(actor.ID) {
		return dto.AssignmentResponse{}, NewAccessDeniedError("only the creator can update this assignment")
	}

	if payload.Title != nil {
		assignment.Title = s.sanitizer.Sanitize(*payload.Title)
	}

	if payload.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, NewValidationError("due_date", "invalid timestamp")
		}
		if !dueDate.After(s.now()) {
			return dto.AssignmentResponse{}, NewValidationError("due_date", "must be in the future")
		}
		assignment.DueDate = dueDate
	}

	if payload.MaxMarks != nil {
		assignment.MaxMarks = *payload.MaxMarks
	}

	changes := repository.AssignmentChanges{
		NewAttachments: assignmentAttachments(payload.Attachments),
	}

	if payload.Visibility != nil {
		assignment.Visibility = *payload.Visibility
		switch *payload.Visibility {
		case models.VisibilityAll:
			// Switching back to all clears the individual set.
			changes.ReplaceStudents = true
			changes.Students = []models.User{}
		case models.VisibilityIndividual:
			students, err := s.users.ListStudentsByIDs(ctx, payload.StudentIDs)
			if err != nil {
				return dto.AssignmentResponse{}, err
			}
			changes.ReplaceStudents = true
			changes.Students = students
		}
	}

	if err := s.assignments.Update(ctx, &assignment, changes); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.recordActivity(ctx, actor, "assignment.updated", assignment.ID, map[string]interface{}{
		"title": assignment.Title,
	})

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	updated, err := s.loadAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(updated), nil
}

// Delete removes the record first and then releases stored blobs; a release
// failure is reported as a warning, never a reason to keep the record.
func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) (dto.AssignmentDeleteResult, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentDeleteResult{}, err
	}

	if !assignment.OwnedBy(actor.ID) {
		return dto.AssignmentDeleteResult{}, NewAccessDeniedError("only the creator can delete this assignment")
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentDeleteResult{}, NewNotFoundError("assignment")
		}
		return dto.AssignmentDeleteResult{}, err
	}

	result := dto.AssignmentDeleteResult{ID: id}
	for _, attachment := range assignment.Attachments {
		if attachment.StorageID == "" {
			continue
		}
		if err := s.store.Release(ctx, attachment.StorageID); err != nil {
			s.logger.Warn().Err(err).Str("storage_id", attachment.StorageID).Msg("attachment release failed")
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to release %s: %v", attachment.Filename, err))
		}
	}

	s.recordActivity(ctx, actor, "assignment.deleted", id, map[string]interface{}{
		"title":            assignment.Title,
		"release_failures": len(result.Warnings),
	})

	s.logger.Info().Uint("assignment_id", id).Int("release_failures", len(result.Warnings)).Msg("assignment deleted")

	return result, nil
}

func (s *assignmentService) ListStudents(ctx context.Context, actor Actor) ([]dto.StudentResponse, error) {
	if !actor.IsTeacher() {
		return nil, NewAccessDeniedError("only teachers can list students")
	}

	students, err := s.users.ListStudents(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewStudentResponseSlice(students), nil
}

func (s *assignmentService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, NewNotFoundError("assignment")
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (s *assignmentService) recordActivity(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *assignmentService) publishEvent(ctx context.Context, subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, subject, payload)
}

func assignmentAttachments(payloads []dto.AttachmentPayload) []models.AssignmentAttachment {
	attachments := make([]models.AssignmentAttachment, 0, len(payloads))
	for _, payload := range payloads {
		attachments = append(attachments, models.AssignmentAttachment{
			Filename:  payload.Filename,
			FileURL:   payload.FileURL,
			StorageID: payload.StorageID,
		})
	}

	return attachments
}
