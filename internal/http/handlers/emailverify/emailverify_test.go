package emailverify

import (
	"context"
	"encoding/json"
	"errors"
	"jsonstore/internal/models"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct{ mock.Mock }

func (m *mockService) PublicKey() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockService) SendEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockService) SendUserEmail(ctx context.Context, email, username string) error {
	args := m.Called(ctx, email, username)
	return args.Error(0)
}

func (m *mockService) CreateToken(ctx context.Context, email, username string) (*models.VerificationToken, error) {
	args := m.Called(ctx, email, username)
	return args.Get(0).(*models.VerificationToken), args.Error(1)
}

func (m *mockService) Verify(raw string) (*models.TokenIntrospection, error) {
	args := m.Called(raw)
	return args.Get(0).(*models.TokenIntrospection), args.Error(1)
}

func (m *mockService) Register(ctx context.Context, raw string, user models.User, password string) (*models.User, error) {
	args := m.Called(ctx, raw, user, password)
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockService) UpdateEmail(ctx context.Context, raw string) (*models.User, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(*models.User), args.Error(1)
}

func TestPublicKey(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/email-verification/public/public-key", nil)

	svc := new(mockService)
	svc.On("PublicKey").Return("-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----\n", nil)

	PublicKey(req.Context(), slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusOK, w.Code)

	var key string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&key))
	assert.True(t, strings.HasPrefix(key, "-----BEGIN PUBLIC KEY-----"))
}

func TestSendEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"sent", nil, http.StatusNoContent},
		{"registration disabled", models.ErrRegistrationDisabled, http.StatusConflict},
		{"invalid address", &models.ValidationError{Messages: []models.ValidationMessage{{Property: "emailAddress", Message: "must be a valid email address"}}}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/email-verification/public/send-email", strings.NewReader(`{"emailAddress":"a@example.com"}`))
			ctx := req.Context()

			svc := new(mockService)
			svc.On("SendEmail", ctx, "a@example.com").Return(tt.err)

			SendEmail(ctx, slog.Default(), w, req, svc)

			assert.Equal(t, tt.code, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestSendUserEmail(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/email-verification/send-email", strings.NewReader(`{"emailAddress":"a@example.com","username":"alice"}`))
	ctx := req.Context()

	svc := new(mockService)
	svc.On("SendUserEmail", ctx, "a@example.com", "alice").Return(nil)

	SendUserEmail(ctx, slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestCreateToken(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/email-verification/create-token", strings.NewReader(`{"emailAddress":"a@example.com"}`))
	ctx := req.Context()

	tok := &models.VerificationToken{
		Token:       "abc",
		Expiry:      time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		RelativeURL: "/verify-email?token=abc",
		FullURL:     "http://localhost:8080/verify-email?token=abc",
	}

	svc := new(mockService)
	svc.On("CreateToken", ctx, "a@example.com", "").Return(tok, nil)

	CreateToken(ctx, slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"token":"abc","expiry":"2030-01-01T00:00:00Z","relativeUrl":"/verify-email?token=abc","fullUrl":"http://localhost:8080/verify-email?token=abc"}`,
		w.Body.String())
}

func TestCreateToken_Conflict(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/email-verification/create-token", strings.NewReader(`{"emailAddress":"a@example.com"}`))
	ctx := req.Context()

	svc := new(mockService)
	svc.On("CreateToken", ctx, "a@example.com", "").Return((*models.VerificationToken)(nil), models.ErrEmailInUse)

	CreateToken(ctx, slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/email-verification/public/verify?token=abc", nil)

		svc := new(mockService)
		svc.On("Verify", "abc").Return(&models.TokenIntrospection{
			Header: map[string]any{"alg": "ES512", "typ": "JWT"},
			Body:   map[string]any{"sub": "a@example.com", "typ": "emailverify"},
		}, nil)

		Verify(req.Context(), slog.Default(), w, req, svc)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"header":{"alg":"ES512","typ":"JWT"},"body":{"sub":"a@example.com","typ":"emailverify"}}`, w.Body.String())
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/email-verification/public/verify?token=abd", nil)

		svc := new(mockService)
		svc.On("Verify", "abd").Return((*models.TokenIntrospection)(nil), models.ErrInvalidToken)

		Verify(req.Context(), slog.Default(), w, req, svc)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"INVALID_TOKEN"`)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/email-verification/public/verify", nil)

		Verify(req.Context(), slog.Default(), w, req, new(mockService))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegister_IgnoresRolesAndDisabled(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	body := `{"token":"abc","user":{"username":"newuser","password":"password123","name":"New","disabled":false,"roles":["naughty-permission"]}}`
	req := httptest.NewRequest(http.MethodPost, "/api/email-verification/public/register", strings.NewReader(body))
	ctx := req.Context()

	verified := time.Unix(1_700_000_000, 0).UTC()
	svc := new(mockService)
	svc.On("Register", ctx, "abc", models.User{Username: "newuser", Name: "New"}, "password123").Return(&models.User{
		ID:            "u1",
		Username:      "newuser",
		Email:         "a@example.com",
		Name:          "New",
		Disabled:      true,
		Roles:         []string{"user"},
		EmailVerified: &verified,
	}, nil)

	Register(ctx, slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, true, resp["disabled"])
	assert.Equal(t, []any{"user"}, resp["roles"])
	assert.NotContains(t, resp, "password")
	assert.NotContains(t, resp, "passHash")
	svc.AssertExpectations(t)
}

func TestRegister_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		code   int
		status string
	}{
		{"user token", models.ErrWrongTokenKind, http.StatusBadRequest, "BAD_REQUEST"},
		{"reused token", models.ErrTokenUsed, http.StatusConflict, "CONFLICT"},
		{"invalid token", models.ErrInvalidToken, http.StatusBadRequest, "INVALID_TOKEN"},
		{"validation", (&models.ValidationError{Messages: []models.ValidationMessage{{Property: "password", Message: "too short"}}}).WithPrefix("user"), http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/email-verification/public/register", strings.NewReader(`{"token":"abc","user":{"username":"u","password":"p"}}`))
			ctx := req.Context()

			svc := new(mockService)
			svc.On("Register", ctx, "abc", mock.Anything, "p").Return((*models.User)(nil), tt.err)

			Register(ctx, slog.Default(), w, req, svc)

			assert.Equal(t, tt.code, w.Code)

			var resp map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.status, resp["status"])
		})
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/email-verification/public/register", strings.NewReader(`{"token":`))

	Register(req.Context(), slog.Default(), w, req, new(mockService))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEmail(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/email-verification/public/update-email", strings.NewReader(`{"token":"abc"}`))
	ctx := req.Context()

	svc := new(mockService)
	svc.On("UpdateEmail", ctx, "abc").Return(&models.User{ID: "u1", Username: "alice", Email: "new@example.com"}, nil)

	UpdateEmail(ctx, slog.Default(), w, req, svc)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "new@example.com", resp["email"])
	assert.Nil(t, resp["emailVerified"])
}
