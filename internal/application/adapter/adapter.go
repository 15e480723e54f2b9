// Package adapter 将通用工具请求适配为各外部模型的精确输入
package adapter

import (
	"context"

	"pixgen-ai-api/internal/application/catalog"
	"pixgen-ai-api/pkg/logger"
	"pixgen-ai-api/pkg/metrics"
)

const (
	// genericPrompt 请求未携带提示词时的兜底提示词
	genericPrompt = "A high quality, detailed, visually striking image"

	// defaultNegativePrompt 固定的反伪影负向提示词
	defaultNegativePrompt = "blurry, low quality, distorted, deformed, disfigured, bad anatomy, watermark, text artifacts"

	aspectRatioFallback = "1:1"
	matchInputImage     = "match_input_image"
)

// Request 通用生成请求。除 Prompt/ImageURL/OutputFormat 外的
// 全部松散知项保留在 Knobs 中，由各模型族规则按需取用。
type Request struct {
	Prompt       string
	ImageURL     string
	OutputFormat string
	Knobs        map[string]any
}

// knob 读取知项，Knobs 为 nil 时安全返回缺失
func (r Request) knob(name string) (any, bool) {
	if r.Knobs == nil {
		return nil, false
	}
	v, ok := r.Knobs[name]
	return v, ok
}

// Result 适配结果：最终模型标识与一次构建完成的输入对象
type Result struct {
	Model        string
	Family       catalog.Family
	Input        map[string]any
	UsedFallback bool
}

// Adapt 把通用请求翻译为解析出的模型要求的精确输入。
// 从不报错：任何无法构造的字段都退化为安全缺省值。
// 当模型强制要求源图而请求未携带时，确定性地降级到族声明的回退模型。
func Adapt(ctx context.Context, toolSlug string, res catalog.Resolution, req Request) Result {
	model := res.Identifier
	if model == "" {
		model = DefaultModel
	}
	spec, family := specForModel(model)

	hasImage := req.ImageURL != ""
	usedFallback := false

	// 能力门控降级：模型要求源图但请求没有
	if spec.requiresImage && !hasImage && spec.fallbackModel != "" {
		logger.Warn(ctx, "model requires image, falling back",
			"tool", toolSlug, "from", model, "to", spec.fallbackModel)
		metrics.ModelFallbackTotal.WithLabelValues(model, spec.fallbackModel).Inc()
		model = spec.fallbackModel
		spec, family = specForModel(model)
		usedFallback = true
	}

	input := make(map[string]any, 8+len(spec.nums)+len(spec.bools)+len(spec.enums))

	if spec.acceptsPrompt {
		input["prompt"] = resolvePrompt(req, res.Matched)
	}

	if spec.negativePrompt {
		np, ok := toString(knobOf(req, "negativePrompt"))
		if !ok {
			np = defaultNegativePrompt
		}
		input["negative_prompt"] = np
	}

	if spec.outputFormat {
		input["output_format"] = normalizeOutputFormat(req.OutputFormat)
	}

	// 源图：仅图生图族接受；仅文生图族静默丢弃而不是转发非法字段
	if hasImage {
		if spec.imageField != "" {
			input[spec.imageField] = req.ImageURL
		} else {
			logger.Debug(ctx, "model is text-to-image only, dropping source image",
				"tool", toolSlug, "model", model)
		}
	}

	if spec.aspectRatio {
		input["aspect_ratio"] = resolveAspectRatio(ctx, toolSlug, spec, family, req, hasImage)
	}

	if spec.seed {
		if seed, ok := toInt(knobOf(req, "seed")); ok {
			input["seed"] = seed
		}
	}

	for _, f := range spec.nums {
		if f.imageOnly && !hasImage {
			continue
		}
		v, _ := req.knob(f.source)
		if f.integer {
			input[f.target] = clampInt(v, f.r)
		} else {
			input[f.target] = clampFloat(v, f.r)
		}
	}

	for _, f := range spec.bools {
		if v, ok := req.knob(f.source); ok {
			if b, ok := toBool(v); ok {
				input[f.target] = b
				continue
			}
		}
		if f.always {
			input[f.target] = f.def
		}
	}

	for _, f := range spec.enums {
		raw := knobOf(req, f.source)
		if raw == nil && f.source == "outputFormat" {
			// 输出格式是顶层请求字段而不是知项
			raw = req.OutputFormat
		}
		s, ok := toString(raw)
		if f.allowed == nil {
			// 透传字段，仅在显式提供时写入
			if ok {
				input[f.target] = s
			}
			continue
		}
		if !ok || !contains(f.allowed, s) {
			s = f.def
		}
		input[f.target] = s
	}

	return Result{
		Model:        model,
		Family:       family,
		Input:        input,
		UsedFallback: usedFallback,
	}
}

// resolvePrompt 提示词优先级：请求 > 工具缺省 > 通用兜底
func resolvePrompt(req Request, matched *catalog.Entry) string {
	if p, ok := toString(req.Prompt); ok {
		return p
	}
	if matched != nil && matched.DefaultPrompt != "" {
		return matched.DefaultPrompt
	}
	return genericPrompt
}

// resolveAspectRatio 纵横比限制在族声明的枚举集内，
// 集外取值替换为 1:1 并记录可观测的告警
func resolveAspectRatio(ctx context.Context, toolSlug string, spec familySpec, family catalog.Family, req Request, hasImage bool) string {
	allowed := spec.aspectRatios
	if allowed == nil {
		allowed = defaultAspectRatios
	}

	raw, ok := toString(knobOf(req, "aspectRatio"))
	if !ok {
		if spec.matchInputImage && hasImage {
			return matchInputImage
		}
		return aspectRatioFallback
	}

	if raw == matchInputImage {
		if spec.matchInputImage && hasImage {
			return matchInputImage
		}
	} else if contains(allowed, raw) {
		return raw
	}

	logger.Warn(ctx, "unsupported aspect ratio replaced",
		"tool", toolSlug, "requested", raw, "replaced_with", aspectRatioFallback)
	metrics.AspectRatioReplacedTotal.WithLabelValues(string(family)).Inc()
	return aspectRatioFallback
}

// normalizeOutputFormat 输出格式限制为 png/jpg/webp
func normalizeOutputFormat(format string) string {
	switch format {
	case "png", "jpg", "webp":
		return format
	case "jpeg":
		return "jpg"
	default:
		return "webp"
	}
}

// knobOf 读取知项值，缺失时返回 nil
func knobOf(req Request, name string) any {
	v, _ := req.knob(name)
	return v
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
