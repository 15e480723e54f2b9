package replicate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pixgen-ai-api/internal/config"
	apperrors "pixgen-ai-api/pkg/errors"
)

func testConfig(baseURL string) config.ReplicateConfig {
	return config.ReplicateConfig{
		APIToken:     "test-token",
		BaseURL:      baseURL,
		WaitSeconds:  1,
		PollInterval: 10 * time.Millisecond,
		PollTimeout:  time.Second,
		HTTPTimeout:  5 * time.Second,
	}
}

func TestRunSynchronousSuccess(t *testing.T) {
	var gotInput map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/black-forest-labs/flux-schnell/predictions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("authorization = %q", got)
		}
		if got := r.Header.Get("Prefer"); got != "wait=1" {
			t.Fatalf("prefer = %q", got)
		}

		var req predictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		gotInput = req.Input

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p1",
			"status": "succeeded",
			"output": []string{"https://cdn.example.com/a.webp"},
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	out, err := c.Run(context.Background(), "black-forest-labs/flux-schnell", map[string]any{"prompt": "a fox"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotInput["prompt"] != "a fox" {
		t.Fatalf("forwarded input = %v", gotInput)
	}

	arr, ok := out.([]any)
	if !ok || len(arr) != 1 || arr[0] != "https://cdn.example.com/a.webp" {
		t.Fatalf("output = %#v", out)
	}
}

func TestRunPollsUntilTerminal(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/models/luma/photon/predictions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p2",
			"status": "processing",
			"urls":   map[string]string{"get": srv.URL + "/predictions/p2"},
		})
	})
	mux.HandleFunc("/predictions/p2", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 3 {
			json.NewEncoder(w).Encode(map[string]any{"id": "p2", "status": "processing",
				"urls": map[string]string{"get": srv.URL + "/predictions/p2"}})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "p2", "status": "succeeded",
			"output": "https://cdn.example.com/b.png"})
	})

	c := NewClient(testConfig(srv.URL))
	out, err := c.Run(context.Background(), "luma/photon", map[string]any{"prompt": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "https://cdn.example.com/b.png" {
		t.Fatalf("output = %#v", out)
	}
	if atomic.LoadInt32(&polls) < 3 {
		t.Fatalf("polls = %d, want at least 3", polls)
	}
}

func TestRunMissingToken(t *testing.T) {
	cfg := testConfig("https://api.replicate.com/v1")
	cfg.APIToken = ""
	c := NewClient(cfg)

	_, err := c.Run(context.Background(), "a/b", nil)
	if err == nil {
		t.Fatal("expected credential error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeCredentialMissing {
		t.Fatalf("code = %s", apperrors.AsAppError(err).Code)
	}
}

func TestRunInvalidModel(t *testing.T) {
	c := NewClient(testConfig("https://api.replicate.com/v1"))
	_, err := c.Run(context.Background(), "no-slash", nil)
	if err == nil {
		t.Fatal("expected error for invalid identifier")
	}
}

func TestRunContentPolicyRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"flagged as sensitive content"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Run(context.Background(), "a/b", map[string]any{"prompt": "x"})
	if err == nil {
		t.Fatal("expected content policy error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeContentPolicy {
		t.Fatalf("code = %s, want %s", appErr.Code, apperrors.CodeContentPolicy)
	}
	if appErr.HTTPStatus != 422 {
		t.Fatalf("http status = %d, want 422", appErr.HTTPStatus)
	}
}

func TestRunFailedPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "p3",
			"status": "failed",
			"error":  "NSFW content detected",
		})
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Run(context.Background(), "a/b", map[string]any{"prompt": "x"})
	if err == nil {
		t.Fatal("expected error for failed prediction")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeContentPolicy {
		t.Fatalf("code = %s, want content policy for nsfw failure", apperrors.AsAppError(err).Code)
	}
}

func TestRunUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"authentication failed"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Run(context.Background(), "a/b", nil)
	if err == nil {
		t.Fatal("expected credential error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeCredentialMissing {
		t.Fatalf("code = %s", apperrors.AsAppError(err).Code)
	}
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want apperrors.ErrorCode
	}{
		{"NSFW content detected", apperrors.CodeContentPolicy},
		{"request flagged by safety system", apperrors.CodeContentPolicy},
		{"invalid api token", apperrors.CodeCredentialMissing},
		{"something exploded", apperrors.CodeProviderError},
	}
	for _, tt := range tests {
		if got := classifyMessage(tt.msg); got.Code != tt.want {
			t.Fatalf("classifyMessage(%q) = %s, want %s", tt.msg, got.Code, tt.want)
		}
	}
}
