package generation

import (
	"context"
	"errors"
	"testing"

	"pixgen-ai-api/internal/domain/entity"
	"pixgen-ai-api/internal/infrastructure/messaging"
	apperrors "pixgen-ai-api/pkg/errors"
)

type fakeInvoker struct {
	out      any
	err      error
	calls    int
	gotModel string
	gotInput map[string]any
}

func (f *fakeInvoker) Run(_ context.Context, model string, input map[string]any) (any, error) {
	f.calls++
	f.gotModel = model
	f.gotInput = input
	return f.out, f.err
}

type fakeCredits struct {
	checkErr  error
	deductErr error
	checks    int
	deducts   int
}

func (f *fakeCredits) Check(context.Context, string, int64) error {
	f.checks++
	return f.checkErr
}

func (f *fakeCredits) Deduct(context.Context, string, int64, string) error {
	f.deducts++
	return f.deductErr
}

type fakeStore struct {
	err   error
	saved []*entity.MediaItem
}

func (f *fakeStore) Save(_ context.Context, item *entity.MediaItem) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, item)
	return nil
}

type fakeEvents struct {
	published int
}

func (f *fakeEvents) PublishMediaGenerated(context.Context, *messaging.MediaGeneratedEvent) (string, error) {
	f.published++
	return "1-0", nil
}

func newTestService(inv *fakeInvoker, cr *fakeCredits, store *fakeStore, events *fakeEvents) *Service {
	var media MediaStore
	if store != nil {
		media = store
	}
	var pub EventPublisher
	if events != nil {
		pub = events
	}
	return NewService(inv, cr, media, pub, 1, func() string { return "test-id" })
}

func TestGenerateHappyPath(t *testing.T) {
	inv := &fakeInvoker{out: []any{"https://cdn.example.com/fox.webp"}}
	cr := &fakeCredits{}
	store := &fakeStore{}
	events := &fakeEvents{}
	svc := newTestService(inv, cr, store, events)

	result, err := svc.Generate(context.Background(), Request{
		ToolSlug: "ai-image-generator",
		UserID:   "u1",
		Prompt:   "a red fox",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ResultURL != "https://cdn.example.com/fox.webp" {
		t.Fatalf("result url = %q", result.ResultURL)
	}
	if result.Model != "black-forest-labs/flux-schnell" {
		t.Fatalf("model = %q", result.Model)
	}
	if result.CreditsDeducted != 1 {
		t.Fatalf("credits deducted = %d, want 1", result.CreditsDeducted)
	}
	if inv.calls != 1 {
		t.Fatalf("invoker calls = %d, want 1", inv.calls)
	}
	if cr.checks != 1 || cr.deducts != 1 {
		t.Fatalf("credit calls = %d/%d, want 1/1", cr.checks, cr.deducts)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(store.saved))
	}
	if store.saved[0].URL != result.ResultURL || store.saved[0].Source != entity.MediaSourceGeneration {
		t.Fatalf("saved item = %+v", store.saved[0])
	}
	if events.published != 1 {
		t.Fatalf("events published = %d, want 1", events.published)
	}
}

func TestGenerateRequiresImage(t *testing.T) {
	inv := &fakeInvoker{}
	cr := &fakeCredits{}
	svc := newTestService(inv, cr, nil, nil)

	_, err := svc.Generate(context.Background(), Request{
		ToolSlug: "pet-to-human",
		Prompt:   "make them human",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeMissingInput {
		t.Fatalf("code = %s, want %s", appErr.Code, apperrors.CodeMissingInput)
	}
	if appErr.HTTPStatus != 400 {
		t.Fatalf("http status = %d, want 400", appErr.HTTPStatus)
	}
	if appErr.Message != "imageUrl is required for pet-to-human." {
		t.Fatalf("message = %q", appErr.Message)
	}
	// 校验失败不产生任何副作用
	if inv.calls != 0 || cr.checks != 0 || cr.deducts != 0 {
		t.Fatalf("validation failure must be side effect free: %d/%d/%d", inv.calls, cr.checks, cr.deducts)
	}
}

func TestGenerateRequiresPromptOrImage(t *testing.T) {
	svc := newTestService(&fakeInvoker{}, &fakeCredits{}, nil, nil)

	_, err := svc.Generate(context.Background(), Request{ToolSlug: "ai-image-generator"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeMissingInput {
		t.Fatalf("code = %s", apperrors.AsAppError(err).Code)
	}
}

func TestGenerateInsufficientCredits(t *testing.T) {
	inv := &fakeInvoker{}
	cr := &fakeCredits{checkErr: apperrors.New(apperrors.CodeInsufficientCredits, "insufficient credits")}
	svc := newTestService(inv, cr, nil, nil)

	_, err := svc.Generate(context.Background(), Request{
		ToolSlug: "ai-image-generator",
		UserID:   "u1",
		Prompt:   "x",
	})
	if err == nil {
		t.Fatal("expected credit error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInsufficientCredits || appErr.HTTPStatus != 400 {
		t.Fatalf("got %s/%d, want %s/400", appErr.Code, appErr.HTTPStatus, apperrors.CodeInsufficientCredits)
	}
	// 生成端从未被调用
	if inv.calls != 0 {
		t.Fatalf("invoker calls = %d, want 0", inv.calls)
	}
}

func TestGenerateDeductionFailureAfterSuccess(t *testing.T) {
	inv := &fakeInvoker{out: "https://cdn.example.com/a.png"}
	cr := &fakeCredits{deductErr: errors.New("conditional update affected 0 rows")}
	store := &fakeStore{}
	svc := newTestService(inv, cr, store, nil)

	_, err := svc.Generate(context.Background(), Request{
		ToolSlug: "ai-image-generator",
		UserID:   "u1",
		Prompt:   "x",
	})
	if err == nil {
		t.Fatal("expected deduction error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeDeductionFailed {
		t.Fatalf("code = %s, want %s", appErr.Code, apperrors.CodeDeductionFailed)
	}
	if appErr.HTTPStatus != 400 {
		t.Fatalf("http status = %d, want 400", appErr.HTTPStatus)
	}
	if inv.calls != 1 {
		t.Fatalf("invoker calls = %d, want 1", inv.calls)
	}
	// 扣费失败的请求不落库
	if len(store.saved) != 0 {
		t.Fatalf("saved = %d, want 0", len(store.saved))
	}
}

func TestGenerateProviderFailure(t *testing.T) {
	inv := &fakeInvoker{err: apperrors.New(apperrors.CodeContentPolicy, "generation blocked by content policy")}
	cr := &fakeCredits{}
	svc := newTestService(inv, cr, nil, nil)

	_, err := svc.Generate(context.Background(), Request{
		ToolSlug: "ai-image-generator",
		Prompt:   "x",
	})
	if err == nil {
		t.Fatal("expected provider error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeContentPolicy || appErr.HTTPStatus != 422 {
		t.Fatalf("got %s/%d, want content policy / 422", appErr.Code, appErr.HTTPStatus)
	}
	// 失败请求不扣费
	if cr.deducts != 0 {
		t.Fatalf("deducts = %d, want 0", cr.deducts)
	}
}

func TestGenerateNormalizationFailureIsFatal(t *testing.T) {
	inv := &fakeInvoker{out: map[string]any{"status": "done"}}
	cr := &fakeCredits{}
	svc := newTestService(inv, cr, nil, nil)

	_, err := svc.Generate(context.Background(), Request{
		ToolSlug: "ai-image-generator",
		Prompt:   "x",
	})
	if err == nil {
		t.Fatal("expected normalization error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNormalizationFailed {
		t.Fatalf("code = %s", apperrors.AsAppError(err).Code)
	}
	if cr.deducts != 0 {
		t.Fatalf("deducts = %d, want 0", cr.deducts)
	}
}

func TestGeneratePersistenceFailureIsSwallowed(t *testing.T) {
	inv := &fakeInvoker{out: "https://cdn.example.com/a.png"}
	store := &fakeStore{err: errors.New("db down")}
	svc := newTestService(inv, &fakeCredits{}, store, nil)

	result, err := svc.Generate(context.Background(), Request{
		ToolSlug: "ai-image-generator",
		UserID:   "u1",
		Prompt:   "x",
	})
	if err != nil {
		t.Fatalf("persistence failure must not fail the request: %v", err)
	}
	if result.ResultURL != "https://cdn.example.com/a.png" {
		t.Fatalf("result url = %q", result.ResultURL)
	}
}

func TestGenerateFallbackReported(t *testing.T) {
	inv := &fakeInvoker{out: "https://cdn.example.com/a.png"}
	svc := newTestService(inv, &fakeCredits{}, nil, nil)

	result, err := svc.Generate(context.Background(), Request{
		ToolSlug: "image-variations",
		Prompt:   "variations",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Resolved.UsedFallback {
		t.Fatal("fallback should be reported in the result")
	}
	if inv.gotModel != "black-forest-labs/flux-dev" {
		t.Fatalf("invoked model = %q, want flux-dev", inv.gotModel)
	}
}

func TestGenerateUnknownSlugUsesDefaultModel(t *testing.T) {
	inv := &fakeInvoker{out: "https://cdn.example.com/a.png"}
	svc := newTestService(inv, &fakeCredits{}, nil, nil)

	result, err := svc.Generate(context.Background(), Request{
		ToolSlug: "zzz-unknown-gadget",
		Prompt:   "something",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Model != "black-forest-labs/flux-schnell" {
		t.Fatalf("model = %q, want default flux-schnell", result.Model)
	}
	if result.Resolved.Matched != "" {
		t.Fatalf("matched should be empty for unresolved slug, got %q", result.Resolved.Matched)
	}
}
