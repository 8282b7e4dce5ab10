package repository

import (
	"context"
	"errors"
	"time"

	"github.com/crowdfund-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

// Ordering is the ORDER BY clause of a listing query
type Ordering string

const (
	// NewestFirst orders by creation time descending, ties broken by id
	NewestFirst Ordering = "created_at DESC, id DESC"
)

// ProjectRepository handles project data access
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project. The owner association is never written.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// GetByID retrieves a project by ID with its owner
func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).Preload("User").First(&project, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

// GetByIDAndUserID retrieves a project by ID only if userID owns it
func (r *ProjectRepository) GetByIDAndUserID(ctx context.Context, id, userID uint) (*models.Project, error) {
	var project models.Project
	result := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND user_id = ?", id, userID).
		First(&project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

// List retrieves every project
func (r *ProjectRepository) List(ctx context.Context, order Ordering) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.WithContext(ctx).
		Preload("User").
		Order(string(order)).
		Find(&projects)
	return projects, result.Error
}

// GetByUserID retrieves all projects owned by a user
func (r *ProjectRepository) GetByUserID(ctx context.Context, userID uint, order Ordering) ([]models.Project, error) {
	var projects []models.Project
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(string(order)).
		Find(&projects)
	return projects, result.Error
}

// SearchByDate retrieves projects starting or ending on the UTC calendar day
// containing day.
func (r *ProjectRepository) SearchByDate(ctx context.Context, day time.Time, order Ordering) ([]models.Project, error) {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	var projects []models.Project
	result := r.db.WithContext(ctx).
		Preload("User").
		Where("(start_time >= ? AND start_time < ?) OR (end_time >= ? AND end_time < ?)", from, to, from, to).
		Order(string(order)).
		Find(&projects)
	return projects, result.Error
}

// CountByUserID counts projects owned by a user
func (r *ProjectRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Update saves every column of project. The owner association is never written.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// DeleteByIDAndUserID deletes a project only if userID owns it
func (r *ProjectRepository) DeleteByIDAndUserID(ctx context.Context, id, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
