package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleCustomer UserRole = "customer"
)

type User struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name"`
	Email             string    `json:"email" gorm:"uniqueIndex"`
	Password          string    `json:"-"` // Hashed password
	Role              UserRole  `json:"role"`
	Status            string    `json:"status"` // Active, Inactive, Blocked
	PreferredLanguage string    `json:"preferred_language" gorm:"default:en"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
