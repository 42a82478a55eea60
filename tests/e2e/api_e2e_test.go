package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/balanceseekr/internal/badge"
	"github.com/balanceseekr/internal/config"
	"github.com/balanceseekr/internal/db"
	"github.com/balanceseekr/internal/handler"
	"github.com/balanceseekr/internal/router"
	"github.com/balanceseekr/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler   http.Handler
	anonymous httpClient
	user      httpClient
	baseURL   string
	password  string
	username  string
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("public endpoints", suite.testPublicEndpoints)
	suite.login(t)
	t.Run("task flow", suite.testTaskFlow)
	t.Run("journal flow", suite.testJournalFlow)
	t.Run("habit flow", suite.testHabitFlow)
	t.Run("achievement wall", suite.testAchievementWall)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Task{},
		&db.JournalEntry{},
		&db.Habit{},
		&db.HabitLog{},
		&db.EarnedBadge{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	if err := db.EnsureUser("admin", "e2e-secret"); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	cipher, err := service.NewJournalCipher("e2e-journal-secret")
	if err != nil {
		t.Fatalf("failed to build cipher: %v", err)
	}

	cfg := config.AppConfig{
		SessionSecret: "test-session-secret",
		GinMode:       gin.TestMode,
	}
	engine := router.SetupRouter(cfg, handler.NewAPI(gdb, cipher))

	return &e2eSuite{
		handler:   engine,
		anonymous: newLocalClient(engine, false),
		user:      newLocalClient(engine, true),
		baseURL:   "http://example.test",
		password:  "e2e-secret",
		username:  "admin",
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	resp := s.mustRequestJSON(t, s.user, http.MethodPost, "/auth/login", map[string]interface{}{
		"username": s.username,
		"password": s.password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed, status %d: %s", resp.StatusCode, readBody(t, resp))
	}
}

func (s *e2eSuite) testPublicEndpoints(t *testing.T) {
	t.Helper()

	resp := s.mustRequest(t, s.anonymous, http.MethodGet, "/ping", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping: expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "pong") {
		t.Fatalf("ping: unexpected body %q", body)
	}

	for _, path := range []string{"/api/tasks", "/api/journal", "/api/habits", "/api/achievements"} {
		resp := s.mustRequest(t, s.anonymous, http.MethodGet, path, nil, nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without session, got %d", path, resp.StatusCode)
		}
	}
}

func (s *e2eSuite) testTaskFlow(t *testing.T) {
	t.Helper()

	// 当天完成 3 个任务，第三个完成时应点亮当日勤奋徽章
	var lastBadges []string
	for i := 1; i <= 3; i++ {
		resp := s.mustRequestJSON(t, s.user, http.MethodPost, "/api/tasks", map[string]interface{}{
			"title": fmt.Sprintf("端到端任务 #%d", i),
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create task expected 201, got %d", resp.StatusCode)
		}
		var created struct {
			Task struct {
				ID uint `json:"id"`
			} `json:"task"`
		}
		decodeJSON(t, resp, &created)
		resp.Body.Close()

		resp = s.mustRequest(t, s.user, http.MethodPut, "/api/tasks/"+idStr(created.Task.ID)+"/complete", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("complete task expected 200, got %d", resp.StatusCode)
		}
		var completed struct {
			Badges []struct {
				ID string `json:"id"`
			} `json:"badges"`
		}
		decodeJSON(t, resp, &completed)
		resp.Body.Close()

		lastBadges = lastBadges[:0]
		for _, b := range completed.Badges {
			lastBadges = append(lastBadges, b.ID)
		}
	}

	if !containsStr(lastBadges, badge.TaskDaily) {
		t.Fatalf("third completion must return task_daily, got %v", lastBadges)
	}
}

func (s *e2eSuite) testJournalFlow(t *testing.T) {
	t.Helper()

	content := "# 端到端复盘\n\n" + strings.TrimSpace(strings.Repeat("记录 ", 520))
	resp := s.mustRequestJSON(t, s.user, http.MethodPost, "/api/journal", map[string]interface{}{
		"content": content,
		"mood":    "calm",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create journal expected 201, got %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var created struct {
		Entry struct {
			ID        uint `json:"id"`
			WordCount int  `json:"word_count"`
		} `json:"entry"`
		Badges []struct {
			ID string `json:"id"`
		} `json:"badges"`
	}
	decodeJSON(t, resp, &created)
	if created.Entry.WordCount < 500 {
		t.Fatalf("expected at least 500 words, got %d", created.Entry.WordCount)
	}

	ids := make([]string, 0, len(created.Badges))
	for _, b := range created.Badges {
		ids = append(ids, b.ID)
	}
	if !containsStr(ids, badge.JournalDeepReflection) {
		t.Fatalf("long entry must light journal_deep_reflection, got %v", ids)
	}

	// 落库内容必须是密文
	var stored db.JournalEntry
	if err := db.DB.First(&stored, created.Entry.ID).Error; err != nil {
		t.Fatalf("failed to load stored entry: %v", err)
	}
	if strings.Contains(stored.Content, "端到端复盘") {
		t.Fatal("journal content must be encrypted at rest")
	}

	// 预览渲染为净化后的 HTML
	preview := s.mustRequest(t, s.user, http.MethodGet, "/api/journal/"+idStr(created.Entry.ID)+"/preview", nil, nil)
	defer preview.Body.Close()
	if preview.StatusCode != http.StatusOK {
		t.Fatalf("preview expected 200, got %d", preview.StatusCode)
	}
	if body := readBody(t, preview); !strings.Contains(body, "端到端复盘") {
		t.Fatalf("preview must contain rendered heading: %s", body)
	}
}

func (s *e2eSuite) testHabitFlow(t *testing.T) {
	t.Helper()

	resp := s.mustRequestJSON(t, s.user, http.MethodPost, "/api/habits", map[string]interface{}{
		"name":            "端到端晨跑",
		"frequency_unit":  "daily",
		"frequency_count": 1,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create habit expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		Habit struct {
			ID uint `json:"id"`
		} `json:"habit"`
	}
	decodeJSON(t, resp, &created)
	resp.Body.Close()

	// 回填前两天，今天打卡后应点亮三日连胜
	now := time.Now()
	var lastBadges []string
	for offset := 2; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset).Format("2006-01-02")
		resp := s.mustRequestJSON(t, s.user, http.MethodPost, "/api/habits/"+idStr(created.Habit.ID)+"/logs", map[string]interface{}{
			"log_date": day,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("log habit expected 200, got %d: %s", resp.StatusCode, readBody(t, resp))
		}
		var logged struct {
			Badges []struct {
				ID string `json:"id"`
			} `json:"badges"`
		}
		decodeJSON(t, resp, &logged)
		resp.Body.Close()

		lastBadges = lastBadges[:0]
		for _, b := range logged.Badges {
			lastBadges = append(lastBadges, b.ID)
		}
	}

	if !containsStr(lastBadges, badge.HabitStreak3) {
		t.Fatalf("three consecutive days must light habit_streak_3, got %v", lastBadges)
	}

	calendar := s.mustRequest(t, s.user, http.MethodGet, "/api/habits/"+idStr(created.Habit.ID)+"/calendar?view=weekly", nil, nil)
	defer calendar.Body.Close()
	if calendar.StatusCode != http.StatusOK {
		t.Fatalf("calendar expected 200, got %d", calendar.StatusCode)
	}
}

func (s *e2eSuite) testAchievementWall(t *testing.T) {
	t.Helper()

	resp := s.mustRequest(t, s.user, http.MethodGet, "/api/achievements", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("achievements expected 200, got %d", resp.StatusCode)
	}

	var wall struct {
		Badges []struct {
			ID       string `json:"id"`
			Unlocked bool   `json:"unlocked"`
		} `json:"badges"`
		Unlocked int `json:"unlocked"`
	}
	decodeJSON(t, resp, &wall)

	if len(wall.Badges) != len(badge.Catalog()) {
		t.Fatalf("expected the full catalog, got %d entries", len(wall.Badges))
	}

	unlocked := make(map[string]bool)
	for _, b := range wall.Badges {
		if b.Unlocked {
			unlocked[b.ID] = true
		}
	}
	for _, want := range []string{badge.TaskDaily, badge.JournalDeepReflection, badge.HabitDaily, badge.HabitStreak3} {
		if !unlocked[want] {
			t.Fatalf("badge %s must be unlocked after the flows above, unlocked=%v", want, unlocked)
		}
	}

	progress := s.mustRequest(t, s.user, http.MethodGet, "/api/achievements/progress", nil, nil)
	defer progress.Body.Close()
	if progress.StatusCode != http.StatusOK {
		t.Fatalf("progress expected 200, got %d", progress.StatusCode)
	}

	var progressPayload struct {
		Progress []struct {
			Category string `json:"category"`
			Streak   int    `json:"streak"`
		} `json:"progress"`
	}
	decodeJSON(t, progress, &progressPayload)
	if len(progressPayload.Progress) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(progressPayload.Progress))
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}

func containsStr(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func idStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
