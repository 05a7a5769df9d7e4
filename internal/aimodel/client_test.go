package aimodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_ScoreText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/classifications" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "openai/gpt-4o-mini" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Input))
		}

		json.NewEncoder(w).Encode(scoreResponse{Score: 87.5})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	score, err := client.ScoreText(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if score != 87.5 {
		t.Errorf("expected score 87.5, got %.2f", score)
	}
}

func TestClient_ScoreText_EmptyContents(t *testing.T) {
	client := NewClient("test-key")

	score, err := client.ScoreText(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if score != 50 {
		t.Errorf("expected neutral score for empty contents, got %.2f", score)
	}
}

func TestClient_ScoreText_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))

	if _, err := client.ScoreText(context.Background(), []string{"hello"}); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestClient_ScoreText_ClampsScore(t *testing.T) {
	tests := []struct {
		raw      float64
		expected float64
	}{
		{-20, 0},
		{140, 100},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(scoreResponse{Score: tt.raw})
		}))

		client := NewClient("test-key", WithBaseURL(server.URL))
		score, err := client.ScoreText(context.Background(), []string{"hello"})
		server.Close()

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if score != tt.expected {
			t.Errorf("raw %.0f: expected %.0f, got %.2f", tt.raw, tt.expected, score)
		}
	}
}

func TestClient_Options(t *testing.T) {
	client := NewClient("test-key",
		WithBaseURL("http://localhost:9999"),
		WithModel("custom/model"),
	)

	if client.baseURL != "http://localhost:9999" {
		t.Errorf("unexpected base URL %q", client.baseURL)
	}
	if client.model != "custom/model" {
		t.Errorf("unexpected model %q", client.model)
	}
}
