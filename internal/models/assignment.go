package models

import "time"

// Visibility values for an assignment.
const (
	VisibilityAll        = "all"
	VisibilityIndividual = "individual"
)

// Assignment represents a task published by a teacher, optionally scoped
// to a named set of students.
type Assignment struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	Title       string                 `gorm:"size:100;not null" json:"title"`
	Description string                 `gorm:"size:1000;not null" json:"description"`
	DueDate     time.Time              `gorm:"not null" json:"due_date"`
	Visibility  string                 `gorm:"size:16;not null;default:all" json:"visibility"`
	MaxMarks    float64                `gorm:"not null;default:100" json:"max_marks"`
	CreatedBy   uint                   `gorm:"not null;index" json:"created_by"`
	Creator     User                   `gorm:"foreignKey:CreatedBy" json:"creator"`
	Students    []User                 `gorm:"many2many:assignment_students" json:"students"`
	Attachments []AssignmentAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// AssignmentAttachment is a stored file linked to an assignment. Insertion
// order is the display order.
type AssignmentAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	StorageID    string    `gorm:"size:255;not null" json:"storage_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// OwnedBy reports whether the given teacher created this assignment.
func (a Assignment) OwnedBy(teacherID uint) bool {
	return a.CreatedBy == teacherID
}

// VisibleTo reports whether the given student may see this assignment.
// An individual assignment with an empty student set is visible to nobody.
func (a Assignment) VisibleTo(studentID uint) bool {
	if a.Visibility != VisibilityIndividual {
		return true
	}
	for _, student := range a.Students {
		if student.ID == studentID {
			return true
		}
	}
	return false
}
