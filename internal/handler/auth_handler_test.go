package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Rexomon/Finance-tracker/internal/middleware"
)

func newAuthHandlerFixture() (*fixture, *AuthHandler) {
	f := newFixture()
	return f, NewAuthHandler(f.authService, CookieConfig{})
}

func TestRegister_Success(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	c, rec := f.request(http.MethodPost, "/api/v1/users/register",
		`{"name":"alice","email":"alice@example.com","password":"long enough password"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "alice" {
		t.Errorf("Expected name 'alice', got %s", response.Name)
	}
	if response.ID == "" {
		t.Error("Expected user id in response")
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	c, rec := f.request(http.MethodPost, "/api/v1/users/register",
		`{"name":"alice","email":"nope","password":"long enough password"}`)

	if err := handler.Register(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected error type %s, got %s", ErrorTypeValidation, problem.Type)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	c, _ := f.request(http.MethodPost, "/api/v1/users/register",
		`{"name":"alice","email":"alice@example.com","password":"long enough password"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := f.request(http.MethodPost, "/api/v1/users/register",
		`{"name":"bob","email":"alice@example.com","password":"long enough password"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestLogin_SetsSessionCookies(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	c, _ := f.request(http.MethodPost, "/api/v1/users/register",
		`{"name":"alice","email":"alice@example.com","password":"long enough password"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := f.request(http.MethodPost, "/api/v1/users/login",
		`{"email":"alice@example.com","password":"long enough password"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	var haveAccess, haveRefresh bool
	for _, cookie := range cookies {
		switch cookie.Name {
		case middleware.AccessTokenCookie:
			haveAccess = cookie.Value != "" && cookie.HttpOnly
		case RefreshTokenCookie:
			haveRefresh = cookie.Value != "" && cookie.HttpOnly
		}
	}
	if !haveAccess {
		t.Error("Expected HttpOnly AccessToken cookie")
	}
	if !haveRefresh {
		t.Error("Expected HttpOnly RefreshToken cookie")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	c, _ := f.request(http.MethodPost, "/api/v1/users/register",
		`{"name":"alice","email":"alice@example.com","password":"long enough password"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := f.request(http.MethodPost, "/api/v1/users/login",
		`{"email":"alice@example.com","password":"wrong password here"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestRefresh_WithCookie(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	_, err := f.authService.Register("alice", "alice@example.com", "long enough password")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	_, pair, err := f.authService.Login("alice@example.com", "long enough password")
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}

	c, rec := f.request(http.MethodPost, "/api/v1/users/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: pair.RefreshToken})

	if err := handler.Refresh(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestRefresh_MissingCookie(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	c, rec := f.request(http.MethodPost, "/api/v1/users/refresh", "")
	if err := handler.Refresh(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestLogout_ClearsCookies(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	user, err := f.authService.Register("alice", "alice@example.com", "long enough password")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if _, _, err := f.authService.Login("alice@example.com", "long enough password"); err != nil {
		t.Fatalf("Failed to login: %v", err)
	}

	c, rec := f.request(http.MethodPost, "/api/v1/users/logout", "")
	setupAuthContext(c, user.ID)

	if err := handler.Logout(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Value != "" {
			t.Errorf("Expected cookie %s to be cleared", cookie.Name)
		}
	}
}

func TestProfile(t *testing.T) {
	f, handler := newAuthHandlerFixture()

	user, err := f.authService.Register("alice", "alice@example.com", "long enough password")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	c, rec := f.request(http.MethodGet, "/api/v1/users/profile", "")
	setupAuthContext(c, user.ID)

	if err := handler.Profile(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Email != "alice@example.com" {
		t.Errorf("Expected email 'alice@example.com', got %s", response.Email)
	}
}
