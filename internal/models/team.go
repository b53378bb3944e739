package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	Name               string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ManagerID          *uint64        `json:"manager_id"`
	AvailableResources []string       `gorm:"serializer:json" json:"available_resources"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Manager *User        `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

type TeamMember struct {
	TeamID    uint64    `gorm:"primarykey" json:"team_id"`
	UserID    uint64    `gorm:"primarykey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
