package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash and
// OTP state never leave the model layer.
type UserDTO struct {
	ID           uint64      `json:"id"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Role         models.Role `json:"role"`
	IsVerified   bool        `json:"is_verified"`
	Skills       []string    `json:"skills"`
	Availability bool        `json:"availability"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserRefDTO is the minimal user shape embedded in other resources.
type UserRefDTO struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserDTO{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		IsVerified:   user.IsVerified,
		Skills:       skills,
		Availability: user.Availability,
		CreatedAt:    user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}

// ToUserRefDTO converts a User model to its embedded reference shape
func ToUserRefDTO(user models.User) UserRefDTO {
	return UserRefDTO{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}
