package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/crowdfund-api/internal/config"
	"github.com/crowdfund-api/internal/database"
	"github.com/crowdfund-api/internal/handler"
	"github.com/crowdfund-api/internal/middleware"
	"github.com/crowdfund-api/internal/server"
	"github.com/crowdfund-api/pkg/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	crypto.Cost = bcrypt.MinCost
	middleware.SetLogger(middleware.NewLogger(io.Discard, "error", "json"))
}

type testApp struct {
	*server.Server
	db *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
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

	srv := server.New(db, config.JWTConfig{
		Secret:           "handler-test-secret-that-is-long-enough",
		Issuer:           "crowdfund-test",
		AccessTTLMinutes: 5,
		RefreshTTLHours:  24,
	}, handler.BuildInfo{Version: "test"})

	return &testApp{Server: srv, db: db}
}

// do sends a JSON request and returns the recorder. body may be nil, a raw
// string or any value to be marshaled.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

type userBody struct {
	ID         uint   `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	DateJoined string `json:"date_joined"`
}

type authBody struct {
	User    userBody `json:"user"`
	Refresh string   `json:"refresh"`
	Access  string   `json:"access"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type projectBody struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Details     string `json:"details"`
	TotalTarget string `json:"total_target"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	CreatedAt   string `json:"created_at"`
	User        uint   `json:"user"`
	UserName    string `json:"user_name"`
}

type myProjectsBody struct {
	Count    int           `json:"count"`
	Projects []projectBody `json:"projects"`
}

func registerPayload(email string) map[string]interface{} {
	return map[string]interface{}{
		"firstName":        gofakeit.FirstName(),
		"lastName":         gofakeit.LastName(),
		"email":            email,
		"mobile":           "01012345678",
		"password":         "secret123",
		"confirm_password": "secret123",
	}
}

// register creates an account through the API and returns its tokens
func (a *testApp) register(t *testing.T, email string) authBody {
	t.Helper()

	w := a.do(t, http.MethodPost, "/accounts/register/", "", registerPayload(email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authBody](t, w)
}

func projectPayload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":        title,
		"details":      gofakeit.Sentence(12),
		"total_target": "2500.00",
		"start_time":   "2026-04-01T10:00:00Z",
		"end_time":     "2026-05-01T10:00:00Z",
	}
}

func (a *testApp) createProject(t *testing.T, token string, payload map[string]interface{}) projectBody {
	t.Helper()

	w := a.do(t, http.MethodPost, "/projects/", token, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[projectBody](t, w)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
