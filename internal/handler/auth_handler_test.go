package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/models"
	"github.com/salahe03/residex/internal/service"
)

// ---- mock implementation ----

type mockAuthenticator struct {
	registerFn func(commands.RegisterCommand) (*models.User, error)
	loginFn    func(commands.LoginCommand) (*service.AuthResult, error)
}

func (m *mockAuthenticator) Register(cmd commands.RegisterCommand) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockAuthenticator) Login(cmd commands.LoginCommand) (*service.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newAuthTestRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(auth)
	api := r.Group("/api/auth")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestRegister(t *testing.T) {
	validBody := map[string]interface{}{
		"name": "Amina", "email": "amina@example.com", "password": "secret123",
		"phone": "0600000001", "apartmentNumber": "A1", "status": "owner",
	}

	tests := []struct {
		name           string
		body           interface{}
		registerFn     func(commands.RegisterCommand) (*models.User, error)
		expectedStatus int
	}{
		{
			name: "success - resident created pending",
			body: validBody,
			registerFn: func(cmd commands.RegisterCommand) (*models.User, error) {
				return &models.User{ID: "usr-new1111111", Name: cmd.Name, Email: cmd.Email}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "conflict - duplicate email",
			body: validBody,
			registerFn: func(cmd commands.RegisterCommand) (*models.User, error) {
				return nil, apperr.Conflict("User already exists")
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"name": "Amina", "email": "amina@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - short password",
			body:           map[string]string{"name": "Amina", "email": "amina@example.com", "password": "abc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - invalid email",
			body:           map[string]string{"name": "Amina", "email": "not-an-email", "password": "secret123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - invalid role",
			body:           map[string]string{"name": "Amina", "email": "amina@example.com", "password": "secret123", "role": "superuser"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthenticator{registerFn: tt.registerFn})
			w := doRequest(router, http.MethodPost, "/api/auth/register", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(commands.LoginCommand) (*service.AuthResult, error)
		expectedStatus int
	}{
		{
			name: "success - valid credentials",
			body: map[string]string{"email": "amina@example.com", "password": "secret123"},
			loginFn: func(cmd commands.LoginCommand) (*service.AuthResult, error) {
				return &service.AuthResult{Token: "mock.jwt.token", User: &models.User{ID: "usr-aaa1111111"}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorised - invalid credentials",
			body: map[string]string{"email": "amina@example.com", "password": "wrongpass"},
			loginFn: func(cmd commands.LoginCommand) (*service.AuthResult, error) {
				return nil, apperr.Auth("Invalid email or password")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "forbidden - account awaiting approval",
			body: map[string]string{"email": "pending@example.com", "password": "secret123"},
			loginFn: func(cmd commands.LoginCommand) (*service.AuthResult, error) {
				return nil, apperr.PendingApproval("Your account is awaiting admin approval")
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"email": "amina@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing email",
			body:           map[string]string{"password": "secret123"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthenticator{loginFn: tt.loginFn})
			w := doRequest(router, http.MethodPost, "/api/auth/login", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

// The pending-approval refusal carries a flag the client uses to show a
// waiting message instead of a login failure.
func TestLoginPendingApprovalFlag(t *testing.T) {
	router := newAuthTestRouter(&mockAuthenticator{
		loginFn: func(cmd commands.LoginCommand) (*service.AuthResult, error) {
			return nil, apperr.PendingApproval("Your account is awaiting admin approval")
		},
	})
	w := doRequest(router, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "pending@example.com", "password": "secret123"})

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d; body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success          bool   `json:"success"`
		Error            string `json:"error"`
		RequiresApproval bool   `json:"requiresApproval"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Success {
		t.Error("success should be false")
	}
	if !resp.RequiresApproval {
		t.Error("requiresApproval flag missing")
	}
}
