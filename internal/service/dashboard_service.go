package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/repository"
)

// DashboardService produces a student's aggregated progress view.
type DashboardService interface {
	GetStudentDashboard(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error)
}

type dashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) GetStudentDashboard(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error) {
	if !actor.IsStudent() {
		return dto.StudentDashboardResponse{}, NewAccessDeniedError("only students have a dashboard")
	}

	cacheKey := fmt.Sprintf("dashboard:student:%d", actor.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", actor.ID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	assignments, err := s.assignments.ListVisibleToStudent(ctx, actor.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()

	submissionByAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		submissionByAssignment[submission.AssignmentID] = submission
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))
	var gradeTotal float64
	var gradedCount int

	for _, assignment := range assignments {
		summary.TotalAssignments++

		entry := dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			DueDate:      assignment.DueDate,
			MaxMarks:     assignment.MaxMarks,
			Status:       "pending",
			UpdatedAt:    assignment.UpdatedAt,
		}

		submission, submitted := submissionByAssignment[assignment.ID]
		if submitted {
			summary.Submitted++
			id := submission.ID
			entry.SubmissionID = &id
			entry.IsLate = submission.IsLate
			entry.Feedback = submission.Feedback
			entry.UpdatedAt = submission.UpdatedAt

			if submission.IsGraded() {
				summary.Graded++
				entry.Status = models.SubmissionStatusGraded
				if submission.Grade != nil {
					gradeTotal += *submission.Grade
					gradedCount++
					entry.Grade = submission.Grade
				}
			} else {
				summary.Pending++
				entry.Status = submission.Status
			}
		} else {
			summary.Pending++
			if assignment.IsPastDue(now) {
				summary.Overdue++
			}
		}

		progress = append(progress, entry)
	}

	if gradedCount > 0 {
		average := gradeTotal / float64(gradedCount)
		summary.AverageGrade = &average
	}

	return dto.StudentDashboardResponse{
		Summary:     summary,
		Assignments: progress,
		GeneratedAt: now.UTC(),
	}
}
