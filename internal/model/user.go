package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role values stored on User.Role
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultProfileImage is assigned when a user registers without uploading one
const DefaultProfileImage = "default.png"

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username" validate:"required"`
	Email        string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Password     string `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string `gorm:"type:varchar(255)" json:"full_name"`
	Role         string `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	ProfileImage string `gorm:"type:varchar(255)" json:"profile_image"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		IsActive:     u.IsActive,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}
