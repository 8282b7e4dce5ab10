package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/crowdfund-api/internal/models"
	"github.com/crowdfund-api/internal/repository"
	"github.com/crowdfund-api/internal/validation"
	"github.com/crowdfund-api/pkg/apperror"
	"github.com/crowdfund-api/pkg/crypto"
)

const (
	minPasswordLength = 6
	maxNameLength     = 150

	msgNullField        = "This field may not be null."
	msgEmailTaken       = "user with this email already exists."
	msgPasswordMismatch = "Passwords do not match"
)

// AccountService handles user accounts and profiles
type AccountService struct {
	userRepo    *repository.UserRepository
	authService *AuthService
	now         func() time.Time
}

// NewAccountService creates a new AccountService
func NewAccountService(userRepo *repository.UserRepository, authService *AuthService) *AccountService {
	return &AccountService{
		userRepo:    userRepo,
		authService: authService,
		now:         utcNow,
	}
}

// SetClock replaces the time source used for date_joined
func (s *AccountService) SetClock(now func() time.Time) {
	s.now = now
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	FirstName       string `json:"firstName" binding:"required,max=150"`
	LastName        string `json:"lastName" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email,max=254"`
	Mobile          string `json:"mobile" binding:"required,egmobile"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegisterResponse is returned by a successful registration
type RegisterResponse struct {
	User    models.UserResponse `json:"user"`
	Refresh string              `json:"refresh"`
	Access  string              `json:"access"`
}

// UpdateProfileRequest carries a partial profile update
type UpdateProfileRequest struct {
	FirstName OptionalString `json:"first_name"`
	LastName  OptionalString `json:"last_name"`
	Mobile    OptionalString `json:"mobile"`
}

// ChangePasswordRequest represents the change password request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// DeleteAccountRequest represents the delete account request
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// NewUser holds the attributes of a user to create. Nil flags take their
// defaults.
type NewUser struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Mobile      string
	IsStaff     *bool
	IsSuperuser *bool
	IsActive    *bool
}

// Register creates an active account and logs it in
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, validation.NormalizeEmail(req.Email))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Field("email", msgEmailTaken)
	}

	if req.Password != req.ConfirmPassword {
		return nil, apperror.Field("confirm_password", msgPasswordMismatch)
	}

	user, err := s.CreateUser(ctx, NewUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    req.Mobile,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.authService.IssueTokens(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &RegisterResponse{
		User:    user.ToResponse(),
		Refresh: tokens.Refresh,
		Access:  tokens.Access,
	}, nil
}

// CreateUser validates and stores a new user with a hashed password
func (s *AccountService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperror.Field("email", "The Email field must be set")
	}
	if in.Mobile != "" && !validation.ValidMobile(in.Mobile) {
		return nil, apperror.Field("mobile", validation.MobileMessage)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Field("email", msgEmailTaken)
	}

	passwordHash, err := s.hashPassword(in.Password, "password")
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Mobile:       in.Mobile,
		IsStaff:      flagOr(in.IsStaff, false),
		IsSuperuser:  flagOr(in.IsSuperuser, false),
		IsActive:     flagOr(in.IsActive, true),
		DateJoined:   s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.Field("email", msgEmailTaken)
		}
		return nil, apperror.Internal(fmt.Errorf("create user: %w", err))
	}

	return user, nil
}

// CreateSuperuser creates a staff superuser. A flag explicitly set to false
// is rejected.
func (s *AccountService) CreateSuperuser(ctx context.Context, in NewUser) (*models.User, error) {
	if in.IsStaff != nil && !*in.IsStaff {
		return nil, apperror.Validation("Superuser must have is_staff=True.")
	}
	if in.IsSuperuser != nil && !*in.IsSuperuser {
		return nil, apperror.Validation("Superuser must have is_superuser=True.")
	}
	if in.IsActive != nil && !*in.IsActive {
		return nil, apperror.Validation("Superuser must have is_active=True.")
	}

	yes := true
	in.IsStaff, in.IsSuperuser, in.IsActive = &yes, &yes, &yes
	return s.CreateUser(ctx, in)
}

// GetProfile retrieves a user by ID
func (s *AccountService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// UpdateProfile applies the supplied fields to user and persists them.
// Nothing is written when any field is invalid.
func (s *AccountService) UpdateProfile(ctx context.Context, user *models.User, req *UpdateProfileRequest) (*models.User, error) {
	fields := make(map[string]string)
	updated := *user

	if v, ok := nameField(req.FirstName, "first_name", fields); ok {
		updated.FirstName = v
	}
	if v, ok := nameField(req.LastName, "last_name", fields); ok {
		updated.LastName = v
	}
	if req.Mobile.Set {
		switch {
		case req.Mobile.Null:
			fields["mobile"] = msgNullField
		case req.Mobile.Value == "":
			fields["mobile"] = msgBlank
		case !validation.ValidMobile(req.Mobile.Value):
			fields["mobile"] = validation.MobileMessage
		default:
			updated.Mobile = req.Mobile.Value
		}
	}

	if len(fields) > 0 {
		return nil, apperror.ValidationFields(fields)
	}

	if err := s.userRepo.Update(ctx, &updated); err != nil {
		return nil, apperror.Internal(fmt.Errorf("update profile: %w", err))
	}

	*user = updated
	return user, nil
}

// ChangePassword replaces the password of user after checking the current one
func (s *AccountService) ChangePassword(ctx context.Context, user *models.User, req *ChangePasswordRequest) error {
	if !s.VerifyPassword(user, req.CurrentPassword) {
		return apperror.Authorization("Current password is incorrect")
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperror.Validation("New passwords do not match")
	}
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLength {
		return apperror.Validation("Password must be at least 6 characters")
	}

	return s.SetPassword(ctx, user, req.NewPassword)
}

// DeleteAccount removes user and every project it owns
func (s *AccountService) DeleteAccount(ctx context.Context, user *models.User, password string) error {
	if !s.VerifyPassword(user, password) {
		return apperror.Authorization("Incorrect password")
	}

	if err := s.userRepo.DeleteWithProjects(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user")
		}
		return apperror.Internal(fmt.Errorf("delete account: %w", err))
	}
	return nil
}

// VerifyPassword reports whether plaintext matches the stored hash of user
func (s *AccountService) VerifyPassword(user *models.User, plaintext string) bool {
	return crypto.CheckPassword(plaintext, user.PasswordHash)
}

// SetPassword re-hashes plaintext and persists it for user
func (s *AccountService) SetPassword(ctx context.Context, user *models.User, plaintext string) error {
	passwordHash, err := s.hashPassword(plaintext, "newPassword")
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("user")
		}
		return apperror.Internal(fmt.Errorf("update password: %w", err))
	}

	user.PasswordHash = passwordHash
	return nil
}

func (s *AccountService) hashPassword(plaintext, field string) (string, error) {
	passwordHash, err := crypto.HashPassword(plaintext)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			return "", apperror.Field(field, "Ensure this field has no more than 72 bytes.")
		}
		return "", apperror.Internal(err)
	}
	return passwordHash, nil
}

func nameField(o OptionalString, name string, fields map[string]string) (string, bool) {
	if !o.Set {
		return "", false
	}
	if o.Null {
		fields[name] = msgNullField
		return "", false
	}
	if utf8.RuneCountInString(o.Value) > maxNameLength {
		fields[name] = fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength)
		return "", false
	}
	return o.Value, true
}

func flagOr(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}
