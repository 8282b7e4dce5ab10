package models

import (
	"strings"
	"time"
)

// User represents a registered account. Email is the login name and is unique
// regardless of case.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex:idx_users_email_lower,expression:LOWER(email);size:254;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Mobile       string    `gorm:"size:11" json:"mobile"`
	IsStaff      bool      `gorm:"not null" json:"-"`
	IsSuperuser  bool      `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null" json:"-"`
	DateJoined   time.Time `gorm:"not null" json:"date_joined"`

	// Relations
	Projects []Project `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// FullName returns the first and last name separated by a space
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserResponse is the public profile of a user
type UserResponse struct {
	ID         uint      `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Mobile     string    `json:"mobile"`
	DateJoined time.Time `json:"date_joined"`
}

// ToResponse builds the public profile of u
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Mobile:     u.Mobile,
		DateJoined: u.DateJoined,
	}
}
