package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tablebook/config"
	"tablebook/infras/jwt"
	jwtMocks "tablebook/infras/jwt/mocks"
	"tablebook/infras/otel/mocks"
	"tablebook/internal/domains/auth/model/dto"
	serviceMocks "tablebook/internal/domains/auth/service/mocks"
	userDto "tablebook/internal/domains/user/model/dto"
	"tablebook/internal/handlers/auth"
	"tablebook/permissions"
	"tablebook/shared/constant"
	"tablebook/shared/failure"
	"tablebook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	service *serviceMocks.MockAuth
	router  http.Handler
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	service := serviceMocks.NewMockAuth(ctrl)
	jwtService := jwtMocks.NewMockJWT(ctrl)

	jwtService.EXPECT().ValidateToken(gomock.Any(), jwt.AccessToken).DoAndReturn(
		func(token string, _ jwt.TokenType) (*jwt.Claims, error) {
			if token != "user-token" {
				return nil, jwt.ErrExpiredToken
			}

			return &jwt.Claims{UserID: "u1", Username: "mario", Role: constant.RoleUser, TokenID: "tok-1"}, nil
		},
	).AnyTimes()

	otel := mocks.NewOtel()
	authRole := middleware.NewAuthRoleMiddleware(jwtService, service, otel, permissions.Get(), &config.Config{})
	handler := auth.New(service, authRole, otel)

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	return fixture{service: service, router: router}
}

func (f fixture) do(method, target, body, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		request.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)

	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func tokens() dto.TokenResponse {
	return dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}
}

func TestHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(f fixture)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: `{"username":"mario","password":"s3cretpass"}`,
			setupMock: func(f fixture) {
				f.service.EXPECT().Register(gomock.Any(), dto.RegisterRequest{Username: "mario", Password: "s3cretpass"}).
					Return(userDto.UserResponse{ID: "u1", Username: "mario", DisplayName: "mario", Role: constant.RoleUser}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       `{"username":"mario","password":"short"}`,
			setupMock:  func(fixture) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "password must be at least 8 characters",
		},
		{
			name: "username taken",
			body: `{"username":"mario","password":"s3cretpass"}`,
			setupMock: func(f fixture) {
				f.service.EXPECT().Register(gomock.Any(), gomock.Any()).
					Return(userDto.UserResponse{}, failure.Conflict("Username already taken"))
			},
			wantStatus: http.StatusConflict,
			wantError:  "Username already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			recorder := f.do(http.MethodPost, "/v1/auth/register", tt.body, "")

			assert.Equal(t, tt.wantStatus, recorder.Code)

			body := decode(t, recorder)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])

				return
			}

			user := body["data"].(map[string]any)
			assert.Equal(t, "mario", user["username"])
			assert.NotContains(t, user, "password")
		})
	}
}

func TestHandler_Login(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().Login(gomock.Any(), dto.LoginRequest{Username: "mario", Password: "s3cretpass"}).Return(tokens(), nil)
	f.service.EXPECT().Login(gomock.Any(), dto.LoginRequest{Username: "mario", Password: "wrongpass"}).
		Return(dto.TokenResponse{}, failure.InvalidCredentialsError)

	recorder := f.do(http.MethodPost, "/v1/auth/login", `{"username":"mario","password":"s3cretpass"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "access", decode(t, recorder)["data"].(map[string]any)["access_token"])

	recorder = f.do(http.MethodPost, "/v1/auth/login", `{"username":"mario","password":"wrongpass"}`, "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, failure.InvalidCredentialsError.Message, decode(t, recorder)["error"])

	recorder = f.do(http.MethodPost, "/v1/auth/login", `{"username":"mario"}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_RefreshToken(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().RefreshToken(gomock.Any(), dto.RefreshTokenRequest{RefreshToken: "refresh"}).Return(tokens(), nil)

	recorder := f.do(http.MethodPost, "/v1/auth/refresh-token", `{"refresh_token":"refresh"}`, "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = f.do(http.MethodPost, "/v1/auth/refresh-token", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_Logout(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		setupMock  func(f fixture)
		wantStatus int
		wantBody   string
	}{
		{
			name:  "logged out",
			token: "user-token",
			setupMock: func(f fixture) {
				f.service.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(false)
				f.service.EXPECT().Logout(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
					assert.Equal(t, "tok-1", ctx.Value(constant.ContextKeyTokenID))

					return nil
				})
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Logged out"}`,
		},
		{
			name:  "token already revoked",
			token: "user-token",
			setupMock: func(f fixture) {
				f.service.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(true)
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Token has been revoked"}`,
		},
		{
			name:       "expired token",
			token:      "stale-token",
			setupMock:  func(fixture) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Token has expired"}`,
		},
		{
			name:       "no token",
			setupMock:  func(fixture) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Missing authorization header"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			recorder := f.do(http.MethodPost, "/v1/auth/logout", "", tt.token)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}

func TestHandler_Me(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().IsRevoked(gomock.Any(), "tok-1").Return(false)
	f.service.EXPECT().Me(gomock.Any()).Return(userDto.UserResponse{ID: "u1", Username: "mario", Role: constant.RoleUser}, nil)

	recorder := f.do(http.MethodGet, "/v1/auth/me", "", "user-token")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "u1", decode(t, recorder)["data"].(map[string]any)["id"])
}

func TestHandler_FacebookLogin(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().FacebookLoginURL(gomock.Any()).Return("https://www.facebook.com/dialog/oauth?state=abc", nil)

	recorder := f.do(http.MethodGet, "/v1/auth/facebook", "", "")
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "https://www.facebook.com/dialog/oauth?state=abc", recorder.Header().Get("Location"))

	f.service.EXPECT().FacebookLoginURL(gomock.Any()).Return("", failure.NotFound("Facebook login is not available"))

	recorder = f.do(http.MethodGet, "/v1/auth/facebook", "", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_FacebookCallback(t *testing.T) {
	f := newFixture(t)

	f.service.EXPECT().FacebookCallback(gomock.Any(), dto.FacebookCallbackRequest{State: "abc", Code: "xyz"}).Return(tokens(), nil)
	f.service.EXPECT().FacebookCallback(gomock.Any(), dto.FacebookCallbackRequest{State: "old", Code: "xyz"}).
		Return(dto.TokenResponse{}, failure.Unauthorized("Invalid or expired login state"))

	recorder := f.do(http.MethodGet, "/v1/auth/facebook/callback?state=abc&code=xyz", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "refresh", decode(t, recorder)["data"].(map[string]any)["refresh_token"])

	recorder = f.do(http.MethodGet, "/v1/auth/facebook/callback?state=old&code=xyz", "", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
