package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"pixgen-ai-api/internal/application/generation"
)

type stubInvoker struct {
	out      any
	err      error
	gotModel string
}

func (s *stubInvoker) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	s.gotModel = model
	return s.out, s.err
}

type stubCredits struct{}

func (stubCredits) Check(ctx context.Context, userID string, amount int64) error { return nil }
func (stubCredits) Deduct(ctx context.Context, userID string, amount int64, toolSlug string) error {
	return nil
}

func newTestRouter(inv *stubInvoker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := generation.NewService(inv, stubCredits{}, nil, nil, 1, func() string { return "id" })

	r := gin.New()
	r.POST("/v1/tools/*slug", NewGenerateHandler(svc).Generate)
	return r
}

func doPost(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateEndpointSuccess(t *testing.T) {
	inv := &stubInvoker{out: []any{"https://cdn.example.com/out.webp"}}
	r := newTestRouter(inv)

	w := doPost(t, r, "/v1/tools/pet-to-human", map[string]any{
		"imageUrl": "https://example.com/cat.jpg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if inv.gotModel != "black-forest-labs/flux-kontext-pro" {
		t.Fatalf("model = %s", inv.gotModel)
	}

	var resp struct {
		Code int `json:"code"`
		Data struct {
			ResultURL string `json:"resultUrl"`
			ToolSlug  string `json:"toolSlug"`
			Resolved  struct {
				Confidence float64 `json:"confidence"`
				Matched    string  `json:"matched"`
			} `json:"resolved"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.ResultURL != "https://cdn.example.com/out.webp" {
		t.Fatalf("resultUrl = %s", resp.Data.ResultURL)
	}
	if resp.Data.ToolSlug != "pet-to-human" || resp.Data.Resolved.Matched != "black-forest-labs/flux-kontext-pro" {
		t.Fatalf("data = %+v", resp.Data)
	}
}

func TestGenerateEndpointMissingImage(t *testing.T) {
	inv := &stubInvoker{out: "unused"}
	r := newTestRouter(inv)

	w := doPost(t, r, "/v1/tools/pet-to-human", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Error   struct {
			ErrorCode string `json:"error_code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "imageUrl is required for pet-to-human." {
		t.Fatalf("message = %q", resp.Message)
	}
	if inv.gotModel != "" {
		t.Fatal("model must not be invoked on validation failure")
	}
}

func TestGenerateEndpointInvalidBody(t *testing.T) {
	r := newTestRouter(&stubInvoker{})

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/pet-to-human", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGenerateEndpointKnobForwarding(t *testing.T) {
	var gotInput map[string]any
	inv := &stubInvoker{out: "https://cdn.example.com/x.png"}
	gin.SetMode(gin.TestMode)
	svc := generation.NewService(runFunc(func(ctx context.Context, model string, input map[string]any) (any, error) {
		gotInput = input
		return inv.out, nil
	}), stubCredits{}, nil, nil, 1, func() string { return "id" })

	r := gin.New()
	r.POST("/v1/tools/*slug", NewGenerateHandler(svc).Generate)

	w := doPost(t, r, "/v1/tools/ai-image-generator", map[string]any{
		"prompt":      "a lighthouse at dusk",
		"aspectRatio": "16:9",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotInput["prompt"] != "a lighthouse at dusk" {
		t.Fatalf("input = %v", gotInput)
	}
	if gotInput["aspect_ratio"] != "16:9" {
		t.Fatalf("input = %v", gotInput)
	}
}

type runFunc func(ctx context.Context, model string, input map[string]any) (any, error)

func (f runFunc) Run(ctx context.Context, model string, input map[string]any) (any, error) {
	return f(ctx, model, input)
}
