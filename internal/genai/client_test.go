package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aether-planner/internal/model"
)

func geminiReply(t *testing.T, payload any) string {
	t.Helper()
	text, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	reply, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": string(text)}}}},
		},
	})
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return string(reply)
}

func TestGenerateTimetable(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(t, map[string]any{
			"tasks": []map[string]any{
				{"title": "Deep work", "startTime": "09:00", "endTime": "11:00", "category": "Work", "priority": "High"},
			},
		})))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, Model: "test-model"})
	carry := []model.Task{{Title: "Leftover"}}
	tasks, err := client.GenerateTimetable(context.Background(), "plan my day", "08:00", "22:00", carry)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header = %q", gotKey)
	}
	prompt := gotBody.Contents[0].Parts[0].Text
	if !strings.Contains(prompt, "plan my day") || !strings.Contains(prompt, "Leftover") {
		t.Fatalf("prompt missing input or carry-over context:\n%s", prompt)
	}
	if gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Fatalf("mime type = %s", gotBody.GenerationConfig.ResponseMIMEType)
	}

	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	if tasks[0].Title != "Deep work" || tasks[0].Category != model.CategoryWork || tasks[0].Priority != model.PriorityHigh {
		t.Fatalf("unexpected task: %+v", tasks[0])
	}
}

func TestGenerateDayReview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(t, map[string]any{
			"summary":             "Productive day",
			"accomplishments":     []string{"Shipped feature"},
			"missedOpportunities": []string{"Skipped gym"},
			"productivityScore":   85,
			"tipsForTomorrow":     "Start earlier",
		})))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	review, err := client.GenerateDayReview(context.Background(), []model.Task{
		{Title: "Ship feature", Category: model.CategoryWork, Status: model.StatusCompleted},
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if review.Summary != "Productive day" || review.ProductivityScore != 85 {
		t.Fatalf("unexpected review: %+v", review)
	}
	if len(review.Accomplishments) != 1 || review.Accomplishments[0] != "Shipped feature" {
		t.Fatalf("accomplishments: %+v", review.Accomplishments)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	_, err := client.GenerateTimetable(context.Background(), "plan", "08:00", "22:00", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Fatalf("error should carry api status: %v", err)
	}
}

func TestEmptyCandidatesRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	if _, err := client.GenerateDayReview(context.Background(), nil); err == nil {
		t.Fatal("expected error on empty response")
	}
}
