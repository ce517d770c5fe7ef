package models

import "time"

type UserRole string

const (
	RoleManager UserRole = "manager"
	RoleViewer  UserRole = "viewer"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:100;uniqueIndex;not null"`
	Name         string   `gorm:"size:100;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;default:viewer"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
