package models

import "time"

// Role values recognised by the access-control rules.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents an authenticated identity. Credentials live in the
// identity provider; only the fields the core needs are stored here.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:16;not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTeacher reports whether the user carries the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent reports whether the user carries the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
