package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/classboard/classboard-api/internal/models"
)

// AssignmentChanges describes association mutations applied alongside a
// field update. New attachments are always appended, never replaced.
type AssignmentChanges struct {
	ReplaceStudents bool
	Students        []models.User
	NewAttachments  []models.AssignmentAttachment
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListByCreator(ctx context.Context, teacherID uint) ([]models.Assignment, error)
	ListVisibleToStudent(ctx context.Context, studentID uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment, changes AssignmentChanges) error
	Delete(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Assignment{}).
		Preload("Creator").
		Preload("Students").
		Preload("Attachments")
}

func (r *assignmentRepository) ListByCreator(ctx context.Context, teacherID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Where("created_by = ?", teacherID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListVisibleToStudent(ctx context.Context, studentID uint) ([]models.Assignment, error) {
	assigned := r.db.Table("assignment_students").
		Select("assignment_id").
		Where("user_id = ?", studentID)

	var assignments []models.Assignment
	if err := r.baseQuery(ctx).
		Where("visibility = ? OR (visibility = ? AND id IN (?))",
			models.VisibilityAll, models.VisibilityIndividual, assigned).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.baseQuery(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment, changes AssignmentChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(assignment).Error; err != nil {
			return err
		}

		if changes.ReplaceStudents {
			students := make([]*models.User, 0, len(changes.Students))
			for i := range changes.Students {
				students = append(students, &changes.Students[i])
			}
			if err := tx.Model(assignment).Association("Students").Replace(students); err != nil {
				return err
			}
		}

		if len(changes.NewAttachments) > 0 {
			for i := range changes.NewAttachments {
				changes.NewAttachments[i].AssignmentID = assignment.ID
			}
			if err := tx.Create(&changes.NewAttachments).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignment := models.Assignment{ID: id}

		if err := tx.Model(&assignment).Association("Students").Clear(); err != nil {
			return err
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.AssignmentAttachment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Assignment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}
