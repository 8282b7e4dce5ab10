package service

import (
	"context"
	"testing"
	"time"

	"github.com/crowdfund-api/internal/config"
	"github.com/crowdfund-api/internal/database"
	"github.com/crowdfund-api/internal/models"
	"github.com/crowdfund-api/internal/repository"
	"github.com/crowdfund-api/pkg/apperror"
	"github.com/crowdfund-api/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	crypto.Cost = bcrypt.MinCost
}

var baseTime = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

var testJWTConfig = config.JWTConfig{
	Secret:           "test-secret-that-is-long-enough-for-hs256",
	Issuer:           "crowdfund-test",
	AccessTTLMinutes: 5,
	RefreshTTLHours:  24,
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type testEnv struct {
	clock       *testClock
	userRepo    *repository.UserRepository
	projectRepo *repository.ProjectRepository
	auth        *AuthService
	accounts    *AccountService
	projects    *ProjectService
}

func newTestEnv(t *testing.T) *testEnv {
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

	env := &testEnv{
		clock:       &testClock{now: baseTime},
		userRepo:    repository.NewUserRepository(db),
		projectRepo: repository.NewProjectRepository(db),
	}
	env.auth = NewAuthService(env.userRepo, testJWTConfig)
	env.auth.SetClock(env.clock.Now)
	env.accounts = NewAccountService(env.userRepo, env.auth)
	env.accounts.SetClock(env.clock.Now)
	env.projects = NewProjectService(env.projectRepo)
	env.projects.SetClock(env.clock.Now)
	return env
}

func (e *testEnv) createUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	user, err := e.accounts.CreateUser(context.Background(), NewUser{
		Email:     email,
		Password:  password,
		FirstName: "Mona",
		LastName:  "Saleh",
		Mobile:    "01012345678",
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), "error: %v", err)
}

func assertFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	assertKind(t, err, apperror.KindValidation)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, message, appErr.Fields[field], "fields: %v", appErr.Fields)
}
