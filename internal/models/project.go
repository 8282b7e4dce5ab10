package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a fundraising campaign owned by a single user
type Project struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Details     string          `gorm:"type:text;not null" json:"details"`
	TotalTarget decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_target"`
	StartTime   time.Time       `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time       `gorm:"not null;index" json:"end_time"`
	// Timestamps are maintained by the service layer, not by gorm.
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null" json:"updated_at"`
	UserID    uint      `gorm:"index;not null" json:"user"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Project model
func (Project) TableName() string {
	return "projects"
}

// ProjectResponse is the full representation of a project
type ProjectResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Details     string    `json:"details"`
	TotalTarget string    `json:"total_target"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	User        uint      `json:"user"`
	UserName    string    `json:"user_name"`
}

// ProjectSummary is the abbreviated representation used by the owner listing
type ProjectSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	TotalTarget string    `json:"total_target"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse builds the full representation. The owner must be preloaded for
// UserName to be filled.
func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Details:     p.Details,
		TotalTarget: p.TotalTarget.StringFixed(2),
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		CreatedAt:   p.CreatedAt,
		User:        p.UserID,
		UserName:    p.User.FullName(),
	}
}

// ToSummary builds the abbreviated representation
func (p *Project) ToSummary() ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Title:       p.Title,
		TotalTarget: p.TotalTarget.StringFixed(2),
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		CreatedAt:   p.CreatedAt,
	}
}
