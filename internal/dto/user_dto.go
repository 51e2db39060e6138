package dto

import "github.com/classboard/classboard-api/internal/models"

// UserLite summarizes an identity without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StudentResponse is returned when teachers list students for individual
// assignment targeting.
type StudentResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserLite converts a user model into its summary form.
func NewUserLite(model models.User) UserLite {
	return UserLite{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
	}
}

// NewStudentResponseSlice converts user models into student DTOs.
func NewStudentResponseSlice(students []models.User) []StudentResponse {
	responses := make([]StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, StudentResponse{
			ID:    student.ID,
			Name:  student.Name,
			Email: student.Email,
		})
	}

	return responses
}
