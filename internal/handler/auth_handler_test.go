package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/balanceseekr/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newAuthTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	store := cookie.NewStore([]byte("auth-test-secret"))
	r.Use(sessions.Sessions("test_session", store))
	r.POST("/auth/login", Login)
	r.POST("/auth/logout", Logout)
	r.GET("/api/ping", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func TestLoginSuccessCreatesSession(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.EnsureUser("admin", "secret123"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	r := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login must set a session cookie")
	}

	// 带上会话 cookie 访问受保护接口
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	for _, ck := range cookies {
		req2.AddCookie(ck)
	}
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("expected authenticated access, got %d", w2.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.EnsureUser("admin", "secret123"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	r := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	r := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.EnsureUser("admin", "secret123"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	r := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	cookies := w.Result().Cookies()

	wOut := httptest.NewRecorder()
	reqOut := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	for _, ck := range cookies {
		reqOut.AddCookie(ck)
	}
	r.ServeHTTP(wOut, reqOut)
	if wOut.Code != http.StatusOK {
		t.Fatalf("logout failed with %d", wOut.Code)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	for _, ck := range wOut.Result().Cookies() {
		req2.AddCookie(ck)
	}
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w2.Code)
	}
}
