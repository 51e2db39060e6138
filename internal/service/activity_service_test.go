package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/classboard/classboard-api/internal/dto"
	"github.com/classboard/classboard-api/internal/models"
	"github.com/classboard/classboard-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityRepo) Create(_ context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(_ context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	filtered := make([]models.ActivityLog, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.ActorID != nil && entry.ActorID != *filter.ActorID {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, int64(len(filtered)), nil
}

func TestActivityServiceRecordNormalizesFields(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	entityID := uint(12)
	recorded, err := svc.Record(context.Background(), ActivityEntry{
		ActorID:    1,
		ActorRole:  "Teacher",
		Action:     "  Assignment.Created ",
		EntityType: " Assignment ",
		EntityID:   &entityID,
		Metadata:   map[string]interface{}{"title": "Homework"},
	})
	require.NoError(t, err)
	require.Equal(t, "assignment.created", recorded.Action)
	require.Equal(t, "assignment", recorded.EntityType)
	require.Equal(t, "teacher", recorded.ActorRole)
	require.Len(t, repo.entries, 1)
}

func TestActivityServiceRecordRequiresAction(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{ActorID: 1, EntityType: "assignment"})
	require.True(t, IsValidation(err))

	_, err = svc.Record(context.Background(), ActivityEntry{ActorID: 1, Action: "assignment.created"})
	require.True(t, IsValidation(err))
}

func TestActivityServiceListFiltersAndPaginates(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, validator.New(validator.WithRequiredStructEnabled()), testLogger())

	for _, action := range []string{"assignment.created", "submission.graded", "assignment.created"} {
		_, err := svc.Record(context.Background(), ActivityEntry{
			ActorID:    1,
			ActorRole:  models.RoleTeacher,
			Action:     action,
			EntityType: "assignment",
		})
		require.NoError(t, err)
	}

	listed, err := svc.List(context.Background(), dto.ActivityListRequest{Action: "Assignment.Created"})
	require.NoError(t, err)
	require.Equal(t, int64(2), listed.Total)
	require.Equal(t, 1, listed.Page)
	require.Equal(t, 20, listed.PageSize)

	_, err = svc.List(context.Background(), dto.ActivityListRequest{PageSize: 500})
	require.True(t, IsValidation(err))
}
