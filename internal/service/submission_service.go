package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/repository"
)

// SubmissionService enforces the one-submission rule, freezes lateness at
// submit time and runs the grading state machine.
type SubmissionService interface {
	Submit(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor Actor, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs the submission ledger service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		activity:    activity,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit checks preconditions in order: assignment exists, caller has
// visibility access, no prior submission. The last check is the insert
// itself; the composite unique key decides races, not a lookup.
func (s *submissionService) Submit(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, NewAccessDeniedError("only students can submit assignments")
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, validationError(err)
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, NewNotFoundError("assignment")
		}
		return dto.SubmissionResponse{}, err
	}

	if !assignment.VisibleTo(actor.ID) {
		return dto.SubmissionResponse{}, NewAccessDeniedError("you are not assigned to this assignment")
	}

	submittedAt := s.now()
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Content:      s.sanitizer.Sanitize(payload.Content),
		Attachments:  submissionAttachments(payload.Attachments),
		SubmittedAt:  submittedAt,
		IsLate:       submittedAt.After(assignment.DueDate),
		Status:       models.SubmissionStatusSubmitted,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, NewDuplicateError("you have already submitted this assignment")
		}
		return dto.SubmissionResponse{}, err
	}

	s.recordActivity(ctx, actor, "submission.created", submission.ID, map[string]interface{}{
		"assignment_id": assignment.ID,
		"is_late":       submission.IsLate,
	})

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Bool("is_late", submission.IsLate).
		Msg("submission created")

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.NewSubmissionResponse(created), nil
}

// Grade validates against the assignment's current max marks, re-read at
// grading time. Repeat grading overwrites the prior grade and feedback.
func (s *submissionService) Grade(ctx context.Context, actor Actor, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/classboard/classboard-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.grade")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.teacher_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, validationError(err)
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, NewNotFoundError("submission")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	if !submission.Assignment.OwnedBy(actor.ID) {
		span.SetStatus(codes.Error, "access_denied")
		return dto.SubmissionResponse{}, NewAccessDeniedError("only the assignment creator can grade this submission")
	}

	grade := *payload.Grade
	maxMarks := submission.Assignment.MaxMarks
	if grade < 0 || grade > maxMarks {
		span.SetStatus(codes.Error, "grade_out_of_bounds")
		return dto.SubmissionResponse{}, NewValidationError("grade", fmt.Sprintf("must be between 0 and %g", maxMarks))
	}

	submission.Grade = &grade
	submission.Feedback = s.sanitizer.Sanitize(strings.TrimSpace(payload.Feedback))
	submission.Status = models.SubmissionStatusGraded

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	s.recordActivity(ctx, actor, "submission.graded", submission.ID, map[string]interface{}{
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.StudentID,
		"grade":         grade,
	})
	s.publishEvent(ctx, "submission.graded", dto.NewSubmissionResponse(submission))

	span.SetAttributes(attribute.Float64("grading.grade", grade))

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("grade", grade).
		Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("assignment")
		}
		return nil, err
	}

	if !assignment.OwnedBy(actor.ID) {
		return nil, NewAccessDeniedError("only the assignment creator can view its submissions")
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListForStudent(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return nil, NewAccessDeniedError("only students can list their own submissions")
	}

	submissions, err := s.submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, NewNotFoundError("submission")
		}
		return dto.SubmissionResponse{}, err
	}

	isOwnerStudent := actor.IsStudent() && submission.StudentID == actor.ID
	isOwningTeacher := actor.IsTeacher() && submission.Assignment.OwnedBy(actor.ID)
	if !isOwnerStudent && !isOwningTeacher {
		return dto.SubmissionResponse{}, NewAccessDeniedError("you may not view this submission")
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) recordActivity(ctx context.Context, actor Actor, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	if _, err := s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *submissionService) publishEvent(ctx context.Context, subject string, payload interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, subject, payload)
}

func submissionAttachments(payloads []dto.AttachmentPayload) []models.SubmissionAttachment {
	attachments := make([]models.SubmissionAttachment, 0, len(payloads))
	for _, payload := range payloads {
		attachments = append(attachments, models.SubmissionAttachment{
			Filename:  payload.Filename,
			FileURL:   payload.FileURL,
			StorageID: payload.StorageID,
		})
	}

	return attachments
}
