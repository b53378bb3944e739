package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Valid reports whether the role is one of the known roles. The
// visibility rules in the services switch exhaustively over these three
// values, so an unknown role never reaches a query.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           uint64   `gorm:"primarykey" json:"id"`
	Email        string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string   `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string   `gorm:"type:varchar(100);not null" json:"last_name"`
	Role         Role     `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsVerified   bool     `gorm:"not null;default:false" json:"is_verified"`
	Skills       []string `gorm:"serializer:json" json:"skills"`
	Availability bool     `gorm:"not null;default:true" json:"availability"`

	// One-time codes for email verification and password reset. A nil
	// code means no active OTP for that purpose.
	OTPCode           *string    `gorm:"type:varchar(6)" json:"-"`
	OTPExpiresAt      *time.Time `json:"-"`
	ResetOTPCode      *string    `gorm:"type:varchar(6)" json:"-"`
	ResetOTPExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ManagedProjects []Project       `gorm:"foreignKey:ManagerID" json:"-"`
	Memberships     []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
	Assignments     []TaskAssignee  `gorm:"foreignKey:UserID" json:"-"`
}
