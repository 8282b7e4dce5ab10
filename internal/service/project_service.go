package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/crowdfund-api/internal/models"
	"github.com/crowdfund-api/internal/repository"
	"github.com/crowdfund-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLength   = 200
	targetMaxDigits  = 10
	targetMaxDecimal = 2

	msgRequired      = "This field is required."
	msgBlank         = "This field may not be blank."
	msgInvalidNumber = "A valid number is required."
	msgBadDatetime   = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
	msgBadDate       = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgTimeRange     = "End time must be after start time"
)

// Accepted datetime layouts. Values without an offset are taken as UTC.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// ProjectService handles project operations
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	now         func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo *repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		now:         utcNow,
	}
}

// SetClock replaces the time source used for created_at and updated_at
func (s *ProjectService) SetClock(now func() time.Time) {
	s.now = now
}

// ProjectInput carries the writable project fields. Absent fields are nil.
// The owner is never taken from the request body.
type ProjectInput struct {
	Title       *string         `json:"title"`
	Details     *string         `json:"details"`
	TotalTarget json.RawMessage `json:"total_target"`
	StartTime   *string         `json:"start_time"`
	EndTime     *string         `json:"end_time"`
}

// MyProjectsResponse lists the caller's projects in abbreviated form
type MyProjectsResponse struct {
	Count    int                     `json:"count"`
	Projects []models.ProjectSummary `json:"projects"`
}

// List returns every project, newest first
func (s *ProjectService) List(ctx context.Context) ([]models.ProjectResponse, error) {
	projects, err := s.projectRepo.List(ctx, repository.NewestFirst)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list projects: %w", err))
	}
	return toResponses(projects), nil
}

// Create stores a new project owned by owner
func (s *ProjectService) Create(ctx context.Context, owner *models.User, in *ProjectInput) (*models.ProjectResponse, error) {
	project := &models.Project{}
	if err := applyInput(project, in, false); err != nil {
		return nil, err
	}

	now := s.now()
	project.UserID = owner.ID
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create project: %w", err))
	}

	// reload with the owner so the response reflects the stored row
	stored, err := s.projectRepo.GetByID(ctx, project.ID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("reload project: %w", err))
	}
	resp := stored.ToResponse()
	return &resp, nil
}

// Get returns a project owned by owner
func (s *ProjectService) Get(ctx context.Context, owner *models.User, id uint) (*models.ProjectResponse, error) {
	project, err := s.ownedProject(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	resp := project.ToResponse()
	return &resp, nil
}

// Update replaces the writable fields of a project owned by owner. With
// partial set, absent fields keep their stored values.
func (s *ProjectService) Update(ctx context.Context, owner *models.User, id uint, in *ProjectInput, partial bool) (*models.ProjectResponse, error) {
	project, err := s.ownedProject(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := applyInput(project, in, partial); err != nil {
		return nil, err
	}
	project.UpdatedAt = s.now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, apperror.Internal(fmt.Errorf("update project: %w", err))
	}

	resp := project.ToResponse()
	return &resp, nil
}

// Delete removes a project owned by owner
func (s *ProjectService) Delete(ctx context.Context, owner *models.User, id uint) error {
	if err := s.projectRepo.DeleteByIDAndUserID(ctx, id, owner.ID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.NotFound("project")
		}
		return apperror.Internal(fmt.Errorf("delete project: %w", err))
	}
	return nil
}

// Search returns projects of any owner starting or ending on the given
// YYYY-MM-DD day. An empty date matches nothing.
func (s *ProjectService) Search(ctx context.Context, date string) ([]models.ProjectResponse, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return []models.ProjectResponse{}, nil
	}

	day, err := time.ParseInLocation(time.DateOnly, date, time.UTC)
	if err != nil {
		return nil, apperror.Field("date", msgBadDate)
	}

	projects, err := s.projectRepo.SearchByDate(ctx, day, repository.NewestFirst)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("search projects: %w", err))
	}
	return toResponses(projects), nil
}

// MyProjects lists the projects owned by owner, newest first
func (s *ProjectService) MyProjects(ctx context.Context, owner *models.User) (*MyProjectsResponse, error) {
	projects, err := s.projectRepo.GetByUserID(ctx, owner.ID, repository.NewestFirst)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list own projects: %w", err))
	}

	summaries := make([]models.ProjectSummary, 0, len(projects))
	for i := range projects {
		summaries = append(summaries, projects[i].ToSummary())
	}

	return &MyProjectsResponse{
		Count:    len(summaries),
		Projects: summaries,
	}, nil
}

func (s *ProjectService) ownedProject(ctx context.Context, owner *models.User, id uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByIDAndUserID(ctx, id, owner.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.NotFound("project")
		}
		return nil, apperror.Internal(err)
	}
	return project, nil
}

// applyInput validates in and copies it onto project. Every field error is
// collected before the time range is checked against the merged values.
func applyInput(project *models.Project, in *ProjectInput, partial bool) error {
	fields := make(map[string]string)
	merged := *project

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			fields["title"] = msgBlank
		case utf8.RuneCountInString(title) > maxTitleLength:
			fields["title"] = fmt.Sprintf("Ensure this field has no more than %d characters.", maxTitleLength)
		default:
			merged.Title = title
		}
	} else if !partial {
		fields["title"] = msgRequired
	}

	if in.Details != nil {
		if details := strings.TrimSpace(*in.Details); details == "" {
			fields["details"] = msgBlank
		} else {
			merged.Details = details
		}
	} else if !partial {
		fields["details"] = msgRequired
	}

	if present(in.TotalTarget) {
		target, msg := parseTarget(in.TotalTarget)
		if msg != "" {
			fields["total_target"] = msg
		} else {
			merged.TotalTarget = target
		}
	} else if !partial {
		fields["total_target"] = msgRequired
	}

	if in.StartTime != nil {
		if t, ok := parseDatetime(*in.StartTime); ok {
			merged.StartTime = t
		} else {
			fields["start_time"] = msgBadDatetime
		}
	} else if !partial {
		fields["start_time"] = msgRequired
	}

	if in.EndTime != nil {
		if t, ok := parseDatetime(*in.EndTime); ok {
			merged.EndTime = t
		} else {
			fields["end_time"] = msgBadDatetime
		}
	} else if !partial {
		fields["end_time"] = msgRequired
	}

	if len(fields) > 0 {
		return apperror.ValidationFields(fields)
	}

	if !merged.StartTime.Before(merged.EndTime) {
		return apperror.Validation(msgTimeRange)
	}

	*project = merged
	return nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// parseTarget accepts a JSON number or numeric string with at most 10 digits,
// 2 of them after the decimal point.
func parseTarget(raw json.RawMessage) (decimal.Decimal, string) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, msgInvalidNumber
		}
		text = strings.TrimSpace(s)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, msgInvalidNumber
	}
	if d.IsNegative() {
		return decimal.Decimal{}, "Ensure this value is greater than or equal to 0."
	}
	if !d.Equal(d.Truncate(targetMaxDecimal)) {
		return decimal.Decimal{}, fmt.Sprintf("Ensure that there are no more than %d decimal places.", targetMaxDecimal)
	}
	limit := decimal.New(1, targetMaxDigits-targetMaxDecimal)
	if d.GreaterThanOrEqual(limit) {
		return decimal.Decimal{}, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", targetMaxDigits-targetMaxDecimal)
	}
	return d.Round(targetMaxDecimal), ""
}

func parseDatetime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return normalizeTime(t), true
		}
	}
	return time.Time{}, false
}

func toResponses(projects []models.Project) []models.ProjectResponse {
	out := make([]models.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, projects[i].ToResponse())
	}
	return out
}
