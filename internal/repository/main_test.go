package repository

import (
	"context"
	"testing"
	"time"

	"github.com/crowdfund-api/internal/config"
	"github.com/crowdfund-api/internal/database"
	"github.com/crowdfund-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// newTestDB opens a migrated in-memory SQLite database
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	}, "release")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

func createUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Mobile:       "01012345678",
		IsActive:     true,
		DateJoined:   baseTime,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createProject(t *testing.T, repo *ProjectRepository, owner *models.User, title string, createdAt, start, end time.Time) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:       title,
		Details:     title + " details",
		TotalTarget: decimal.RequireFromString("1500.50"),
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		UserID:      owner.ID,
	}
	require.NoError(t, repo.Create(context.Background(), project))
	return project
}
