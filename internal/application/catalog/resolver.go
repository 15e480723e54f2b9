package catalog

import (
	"strings"
)

// 置信度阈值：低于阈值视为未解析
const (
	DefaultThreshold  = 18
	CriticalThreshold = 25
)

// criticalTools 对解析质量要求更高的工具，误匹配代价大
var criticalTools = map[string]bool{
	"pet-to-human":          true,
	"remove-background":     true,
	"ai-photo-enhancer":     true,
	"old-photo-restoration": true,
}

// Resolution 一次解析的结果，请求期内不可变
type Resolution struct {
	Identifier string
	Confidence float64
	Matched    *Entry
}

// Resolved 判断解析结果是否达到该 slug 的阈值
func (r Resolution) Resolved(slug string) bool {
	return r.Identifier != "" && r.Confidence >= float64(Threshold(slug))
}

// Threshold 返回指定工具的解析阈值
func Threshold(slug string) int {
	if criticalTools[lastSegment(normalize(slug))] {
		return CriticalThreshold
	}
	return DefaultThreshold
}

// Resolve 将工具 slug 解析为外部模型标识与置信度。
// 纯函数：无 I/O、无随机性，相同输入永远产生相同输出。
// 未命中任何条目时返回空标识和置信度 0，从不报错。
func Resolve(toolSlug string) Resolution {
	slug := normalize(toolSlug)
	if slug == "" {
		return Resolution{}
	}

	// 别名精确命中，直接满分
	if e, ok := byAlias[slug]; ok {
		return Resolution{Identifier: e.Identifier(), Confidence: 100, Matched: e}
	}
	// 多段 slug 的末段也尝试精确命中
	if e, ok := byAlias[lastSegment(slug)]; ok {
		return Resolution{Identifier: e.Identifier(), Confidence: 100, Matched: e}
	}

	var (
		best      *Entry
		bestScore float64
	)
	for i := range entries {
		e := &entries[i]
		score := scoreEntry(slug, e)
		// 平手时选择 owner/name 字典序较小者，保证确定性
		if score > bestScore || (score == bestScore && best != nil && score > 0 && e.Identifier() < best.Identifier()) {
			best = e
			bestScore = score
		}
	}

	if best == nil || bestScore <= 0 {
		return Resolution{}
	}
	return Resolution{Identifier: best.Identifier(), Confidence: bestScore, Matched: best}
}

// scoreEntry 计算 slug 与条目的匹配分，取所有别名的最高分
func scoreEntry(slug string, e *Entry) float64 {
	var best float64
	candidates := make([]string, 0, len(e.Aliases)+1)
	candidates = append(candidates, e.Aliases...)
	candidates = append(candidates, e.Name)
	for _, alias := range candidates {
		if s := scoreAlias(slug, normalize(alias)); s > best {
			best = s
		}
	}
	return best
}

// scoreAlias 单别名打分：精确 100，包含 82，其余按 token 重合度折算到 [0,70]
func scoreAlias(slug, alias string) float64 {
	if alias == "" {
		return 0
	}
	if slug == alias {
		return 100
	}

	flatSlug := strings.NewReplacer("-", "", "/", "").Replace(slug)
	flatAlias := strings.NewReplacer("-", "", "/", "").Replace(alias)
	if strings.Contains(flatSlug, flatAlias) || strings.Contains(flatAlias, flatSlug) {
		return 82
	}

	slugTokens := tokens(slug)
	aliasTokens := tokens(alias)
	if len(slugTokens) == 0 || len(aliasTokens) == 0 {
		return 0
	}

	common := 0
	seen := make(map[string]bool, len(aliasTokens))
	for _, t := range aliasTokens {
		seen[t] = true
	}
	for _, t := range slugTokens {
		if seen[t] {
			common++
			delete(seen, t)
		}
	}

	// Dice 系数折算
	return 70 * float64(2*common) / float64(len(slugTokens)+len(aliasTokens))
}

// normalize 统一大小写与分隔符
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "/")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

// lastSegment 取路径式 slug 的末段
func lastSegment(slug string) string {
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		return slug[i+1:]
	}
	return slug
}

// tokens 按分隔符切词，过滤空串与纯粹的噪声词
func tokens(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '/' || r == '.'
	})
	out := raw[:0]
	for _, t := range raw {
		if t == "" || t == "ai" {
			continue
		}
		out = append(out, t)
	}
	return out
}
