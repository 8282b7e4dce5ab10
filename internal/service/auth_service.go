package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crowdfund-api/internal/config"
	"github.com/crowdfund-api/internal/models"
	"github.com/crowdfund-api/internal/repository"
	"github.com/crowdfund-api/pkg/apperror"
	"github.com/crowdfund-api/pkg/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Login failure messages
const (
	msgLoginFieldsRequired = "Must include 'email' and 'password'."
	msgInvalidCredentials  = "Unable to log in with provided credentials."
	msgAccountDisabled     = "User account is disabled."
)

// AuthService issues and verifies bearer tokens
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtConfig config.JWTConfig
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		now:       utcNow,
	}
}

// SetClock replaces the time source used for token issue and expiry checks
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token to exchange for a new access token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPair is the access/refresh token pair handed out on login and registration
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	User    models.UserResponse `json:"user"`
	Refresh string              `json:"refresh"`
	Access  string              `json:"access"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Login verifies email and password and issues a fresh token pair
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperror.Validation(msgLoginFieldsRequired)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Validation(msgInvalidCredentials)
		}
		return nil, apperror.Internal(err)
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return nil, apperror.Validation(msgInvalidCredentials)
	}
	if !user.IsActive {
		return nil, apperror.Validation(msgAccountDisabled)
	}

	tokens, err := s.IssueTokens(user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &LoginResponse{
		User:    user.ToResponse(),
		Refresh: tokens.Refresh,
		Access:  tokens.Access,
	}, nil
}

// IssueTokens generates a new access/refresh pair for user
func (s *AuthService) IssueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.generateToken(user.ID, TokenTypeAccess, s.accessTTL())
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user.ID, TokenTypeRefresh, s.refreshTTL())
	if err != nil {
		return nil, err
	}
	return &TokenPair{Refresh: refresh, Access: access}, nil
}

// Authenticate resolves an access token to its active user
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString, TokenTypeAccess)
	if err != nil {
		return nil, apperror.Authentication("Given token not valid for any token type")
	}

	return s.activeUser(ctx, claims.UserID)
}

// Refresh exchanges a refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.Field("refresh", "This field is required.")
	}

	claims, err := s.ValidateToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", apperror.Authentication("Token is invalid or expired")
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.generateToken(user.ID, TokenTypeAccess, s.accessTTL())
	if err != nil {
		return "", apperror.Internal(err)
	}
	return access, nil
}

// ValidateToken validates a JWT token of the expected type and returns the claims
func (s *AuthService) ValidateToken(tokenString, tokenType string) (*JWTClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.jwtConfig.Issuer),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

func (s *AuthService) activeUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Authentication("User not found")
		}
		return nil, apperror.Internal(err)
	}
	if !user.IsActive {
		return nil, apperror.Authentication("User is inactive")
	}
	return user, nil
}

// generateToken generates a signed token of the given type for a user
func (s *AuthService) generateToken(userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()

	claims := &JWTClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

func (s *AuthService) accessTTL() time.Duration {
	return time.Duration(s.jwtConfig.AccessTTLMinutes) * time.Minute
}

func (s *AuthService) refreshTTL() time.Duration {
	return time.Duration(s.jwtConfig.RefreshTTLHours) * time.Hour
}
