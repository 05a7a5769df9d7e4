package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/todmy/botcheck/pkg/models"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	server := NewServer(ServerConfig{
		DB:        db,
		JWTSecret: "test-secret",
		Logger:    zerolog.Nop(),
	})

	return server, mock
}

func analyzeBody(t *testing.T, req AnalyzeRequest) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewReader(body)
}

func testMessages(n int) []models.Message {
	messages := make([]models.Message, n)
	base := int64(1_700_000_000)
	for i := range messages {
		ts := base + int64(i*300)
		messages[i] = models.Message{
			Content:   fmt.Sprintf("message number %d", i),
			CreatedAt: &ts,
			AuthorID:  "u1",
			ChannelID: "c1",
		}
	}
	return messages
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

func TestServer_Analyze(t *testing.T) {
	server, mock := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/analyze",
		analyzeBody(t, AnalyzeRequest{Messages: testMessages(20)}))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.AnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result.TotalScore < 0 || result.TotalScore > 100 {
		t.Errorf("total score out of range: %.2f", result.TotalScore)
	}
	if result.MessageCount != 20 {
		t.Errorf("expected message count 20, got %d", result.MessageCount)
	}
	if result.Confidence != 80 {
		t.Errorf("expected confidence 80 at 20 messages, got %.2f", result.Confidence)
	}

	// No guild/user ids: nothing persisted.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected db access: %v", err)
	}
}

func TestServer_Analyze_Persists(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectExec("INSERT INTO scores").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/analyze",
		analyzeBody(t, AnalyzeRequest{
			Messages: testMessages(10),
			GuildID:  "g1",
			UserID:   "u1",
		}))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestServer_Analyze_StoreFailureStillResponds(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectExec("INSERT INTO scores").
		WillReturnError(fmt.Errorf("connection refused"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/analyze",
		analyzeBody(t, AnalyzeRequest{
			Messages: testMessages(10),
			GuildID:  "g1",
			UserID:   "u1",
		}))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite store failure, got %d", rec.Code)
	}
}

func TestServer_Analyze_BadRequests(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"messages": [`},
		{"empty messages", `{"messages": []}`},
		{"missing messages", `{}`},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/analyze", bytes.NewReader([]byte(tt.body)))
		server.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
		}
	}
}

func TestServer_ProtectedRoutesRequireAuth(t *testing.T) {
	server, _ := newTestServer(t)

	paths := []string{
		"/api/v1/users/u1/score",
		"/api/v1/users/u1/history",
		"/api/v1/stats",
	}

	for _, path := range paths {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}

		rec = httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestServer_Register(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectQuery("SELECT (.+) FROM operators WHERE username").
		WithArgs("moderator").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}))
	mock.ExpectExec("INSERT INTO operators").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/register",
		bytes.NewReader([]byte(`{"username": "moderator", "password": "long-enough-password"}`)))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestServer_Register_ShortPassword(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/register",
		bytes.NewReader([]byte(`{"username": "moderator", "password": "short"}`)))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", rec.Code)
	}
}

func TestServer_LoginAndAccessProtectedRoute(t *testing.T) {
	server, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("long-enough-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM operators WHERE username").
		WithArgs("moderator").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
			AddRow("op-1", "moderator", string(hash), now, now))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"username": "moderator", "password": "long-enough-password"}`)))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", rec.Code, rec.Body.String())
	}

	var loginResp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token := loginResp["token"]
	if token == "" {
		t.Fatal("expected token in login response")
	}

	mock.ExpectQuery("SELECT (.+) FROM scores WHERE user_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "guild_id", "user_id", "total_score", "timing_score", "style_score",
			"behavior_score", "ai_score", "profile_score", "network_score",
			"confidence", "sample_size", "analyzed_at",
		}).AddRow("score-1", "g1", "u1", 72.5, 80.0, 65.0, 70.0, 60.0, 85.0, 55.0, 80.0, 20, now))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/users/u1/score", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d: %s", rec.Code, rec.Body.String())
	}

	var score models.Score
	if err := json.NewDecoder(rec.Body).Decode(&score); err != nil {
		t.Fatalf("failed to decode score: %v", err)
	}
	if score.TotalScore != 72.5 {
		t.Errorf("expected total score 72.5, got %.2f", score.TotalScore)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestServer_Login_WrongPassword(t *testing.T) {
	server, mock := newTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM operators WHERE username").
		WithArgs("moderator").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
			AddRow("op-1", "moderator", string(hash), now, now))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"username": "moderator", "password": "a-wrong-password"}`)))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on wrong password, got %d", rec.Code)
	}
}

func TestServer_GetUserScore_NotFound(t *testing.T) {
	server, mock := newTestServer(t)

	token := loginToken(t, server, mock)

	mock.ExpectQuery("SELECT (.+) FROM scores WHERE user_id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "guild_id", "user_id", "total_score", "timing_score", "style_score",
			"behavior_score", "ai_score", "profile_score", "network_score",
			"confidence", "sample_size", "analyzed_at",
		}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/users/ghost/score", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", rec.Code)
	}
}

func TestServer_GetUserHistory_Empty(t *testing.T) {
	server, mock := newTestServer(t)

	token := loginToken(t, server, mock)

	mock.ExpectQuery("SELECT (.+) FROM scores WHERE user_id").
		WithArgs("u1", 20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "guild_id", "user_id", "total_score", "timing_score", "style_score",
			"behavior_score", "ai_score", "profile_score", "network_score",
			"confidence", "sample_size", "analyzed_at",
		}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/users/u1/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if body := rec.Body.String(); body[0] != '[' {
		t.Errorf("expected JSON array for empty history, got %s", body)
	}
}

func TestServer_Stats(t *testing.T) {
	server, mock := newTestServer(t)

	token := loginToken(t, server, mock)

	mock.ExpectQuery("SELECT COUNT\\(DISTINCT user_id\\), COUNT\\(\\*\\), AVG\\(total_score\\)").
		WillReturnRows(sqlmock.NewRows([]string{"users", "analyses", "avg"}).
			AddRow(2, 5, 58.0))
	mock.ExpectQuery("SELECT s.user_id, s.guild_id, s.total_score, s.analyzed_at").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "guild_id", "total_score", "analyzed_at"}).
			AddRow("u1", "g1", 90.0, time.Now()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats models.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.TotalUsers != 2 || stats.TotalAnalyses != 5 {
		t.Errorf("unexpected counts: %d users, %d analyses", stats.TotalUsers, stats.TotalAnalyses)
	}
	if len(stats.TopSuspicious) != 1 {
		t.Errorf("expected 1 suspicious user, got %d", len(stats.TopSuspicious))
	}
}

// loginToken runs the login flow against mocked operator rows and returns a
// valid bearer token.
func loginToken(t *testing.T, server *Server, mock sqlmock.Sqlmock) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("long-enough-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM operators WHERE username").
		WithArgs("moderator").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
			AddRow("op-1", "moderator", string(hash), now, now))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		bytes.NewReader([]byte(`{"username": "moderator", "password": "long-enough-password"}`)))
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp["token"]
}
