// Package generation 提供生成请求的编排核心：
// 校验 -> 积分检查 -> 模型解析 -> 参数适配 -> 调用 -> 输出归一 -> 扣费 -> 尽力落库
package generation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pixgen-ai-api/internal/application/adapter"
	"pixgen-ai-api/internal/application/catalog"
	"pixgen-ai-api/internal/domain/entity"
	"pixgen-ai-api/internal/infrastructure/messaging"
	apperrors "pixgen-ai-api/pkg/errors"
	"pixgen-ai-api/pkg/logger"
	"pixgen-ai-api/pkg/metrics"
	"pixgen-ai-api/pkg/tracer"
)

// Invoker 生成端调用接口
type Invoker interface {
	Run(ctx context.Context, model string, input map[string]any) (any, error)
}

// CreditService 积分协作方接口
type CreditService interface {
	Check(ctx context.Context, userID string, amount int64) error
	Deduct(ctx context.Context, userID string, amount int64, toolSlug string) error
}

// MediaStore 媒体库协作方接口
type MediaStore interface {
	Save(ctx context.Context, item *entity.MediaItem) error
}

// EventPublisher 生成事件发布接口
type EventPublisher interface {
	PublishMediaGenerated(ctx context.Context, evt *messaging.MediaGeneratedEvent) (string, error)
}

// Request 一次工具生成请求，请求期内的值对象
type Request struct {
	ToolSlug     string
	UserID       string
	Prompt       string
	ImageURL     string
	OutputFormat string
	Knobs        map[string]any
}

// ResolvedInfo 解析结果摘要，随响应返回
type ResolvedInfo struct {
	Confidence   float64
	Matched      string
	UsedFallback bool
}

// Result 生成结果
type Result struct {
	ResultURL       string
	Model           string
	ToolSlug        string
	CreditsDeducted int64
	Resolved        ResolvedInfo
}

// Service 生成编排服务
type Service struct {
	invoker     Invoker
	credits     CreditService
	media       MediaStore
	events      EventPublisher
	defaultCost int64

	newID func() string
	now   func() time.Time
}

// NewService 创建生成编排服务。media 与 events 允许为 nil（纯生成模式）。
func NewService(invoker Invoker, credits CreditService, media MediaStore, events EventPublisher, defaultCost int64, newID func() string) *Service {
	if defaultCost <= 0 {
		defaultCost = 1
	}
	return &Service{
		invoker:     invoker,
		credits:     credits,
		media:       media,
		events:      events,
		defaultCost: defaultCost,
		newID:       newID,
		now:         time.Now,
	}
}

// Generate 执行一次完整的工具生成请求
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "generation.Generate",
		trace.WithAttributes(attribute.String("tool.slug", req.ToolSlug)))
	defer span.End()

	ctx = logger.WithContext(ctx, logger.ToolSlugKey, req.ToolSlug)
	start := s.now()

	result, err := s.generate(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.GenerationTotal.WithLabelValues(req.ToolSlug, status).Inc()
	metrics.GenerationDuration.WithLabelValues(req.ToolSlug).Observe(time.Since(start).Seconds())

	return result, err
}

func (s *Service) generate(ctx context.Context, req Request) (*Result, error) {
	// 解析是纯函数，提前执行以获得校验所需的目录信息；
	// 此时尚未发生任何副作用
	res := catalog.Resolve(req.ToolSlug)
	if !res.Resolved(req.ToolSlug) {
		logger.Warn(ctx, "tool slug did not resolve, using default model",
			"confidence", res.Confidence)
		res = catalog.Resolution{}
	}

	// Validating：校验失败不产生任何副作用
	if err := validate(req, res.Matched); err != nil {
		return nil, err
	}

	cost := s.costFor(res.Matched)

	// CreditChecking：余额不足时生成端从未被调用
	if err := s.credits.Check(ctx, req.UserID, cost); err != nil {
		return nil, asCreditError(err)
	}

	// Adapting：适配从不失败，必要时确定性降级模型
	adapted := adapter.Adapt(ctx, req.ToolSlug, res, adapter.Request{
		Prompt:       req.Prompt,
		ImageURL:     req.ImageURL,
		OutputFormat: req.OutputFormat,
		Knobs:        req.Knobs,
	})

	logger.Info(ctx, "invoking generation model",
		"model", adapted.Model,
		"confidence", res.Confidence,
		"used_fallback", adapted.UsedFallback,
	)

	// Invoking：单次调用，无重试
	output, err := s.invoker.Run(ctx, adapted.Model, adapted.Input)
	if err != nil {
		logger.Error(ctx, "generation provider call failed", err,
			"model", adapted.Model, "input", adapted.Input)
		return nil, asProviderError(err)
	}

	// Normalizing：失败对请求致命，绝不返回部分结果
	resultURL, err := NormalizeOutput(output)
	if err != nil {
		logger.Error(ctx, "provider output normalization failed", err,
			"model", adapted.Model, "input", adapted.Input)
		return nil, err
	}

	// Deducting：已产生结果后扣费；失败原样上报，不回滚生成
	if err := s.credits.Deduct(ctx, req.UserID, cost, req.ToolSlug); err != nil {
		logger.Error(ctx, "credit deduction failed after successful generation", err,
			"model", adapted.Model)
		return nil, apperrors.Wrap(err, apperrors.CodeDeductionFailed, "credit deduction failed")
	}
	metrics.CreditsDeducted.WithLabelValues(req.ToolSlug).Add(float64(cost))

	result := &Result{
		ResultURL:       resultURL,
		Model:           adapted.Model,
		ToolSlug:        req.ToolSlug,
		CreditsDeducted: cost,
		Resolved: ResolvedInfo{
			Confidence:   res.Confidence,
			Matched:      res.Identifier,
			UsedFallback: adapted.UsedFallback,
		},
	}

	// PersistingBestEffort：失败仅记录日志，从不影响请求结果
	s.persist(ctx, req, result)

	return result, nil
}

// validate 入口校验。需要源图的工具缺图直接拒绝，
// 其余工具至少要求提示词或源图之一。
func validate(req Request, matched *catalog.Entry) error {
	if req.ToolSlug == "" {
		return apperrors.New(apperrors.CodeInvalidParam, "tool slug is required")
	}
	if matched != nil && matched.RequiresImage && req.ImageURL == "" {
		return apperrors.New(apperrors.CodeMissingInput,
			fmt.Sprintf("imageUrl is required for %s.", req.ToolSlug))
	}
	if req.Prompt == "" && req.ImageURL == "" {
		return apperrors.New(apperrors.CodeMissingInput,
			"either prompt or imageUrl is required")
	}
	return nil
}

// costFor 单次生成的积分成本：目录条目优先，否则取配置缺省值
func (s *Service) costFor(matched *catalog.Entry) int64 {
	if matched != nil && matched.Cost > 0 {
		return int64(matched.Cost)
	}
	return s.defaultCost
}

// persist 尽力而为的媒体落库与事件发布
func (s *Service) persist(ctx context.Context, req Request, result *Result) {
	if s.media == nil {
		return
	}

	item := &entity.MediaItem{
		ID:        s.newID(),
		UserID:    req.UserID,
		URL:       result.ResultURL,
		Prompt:    req.Prompt,
		ToolSlug:  req.ToolSlug,
		Model:     result.Model,
		Source:    entity.MediaSourceGeneration,
		CreatedAt: s.now(),
	}

	if err := s.media.Save(ctx, item); err != nil {
		logger.Warn(ctx, "best-effort media persistence failed", "error", err.Error())
		return
	}

	if s.events != nil {
		evt := &messaging.MediaGeneratedEvent{
			MediaID:   item.ID,
			UserID:    item.UserID,
			ToolSlug:  item.ToolSlug,
			Model:     item.Model,
			URL:       item.URL,
			Prompt:    item.Prompt,
			CreatedAt: item.CreatedAt,
		}
		if _, err := s.events.PublishMediaGenerated(ctx, evt); err != nil {
			logger.Warn(ctx, "media generated event publish failed", "error", err.Error())
		}
	}
}

// asCreditError 积分检查错误统一映射为 400
func asCreditError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeInsufficientCredits, "credit check failed")
}

// asProviderError 生成端错误保留已分类的 AppError，其余按 500 处理
func asProviderError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeProviderError, "image generation failed")
}
