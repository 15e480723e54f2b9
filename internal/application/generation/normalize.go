package generation

import (
	"fmt"

	apperrors "pixgen-ai-api/pkg/errors"
)

// urlKeys 对象形输出中按序尝试的 URL 成员名
var urlKeys = []string{"url", "output", "image"}

// NormalizeOutput 把生成端的各种异构输出形状归一为单个结果 URL。
// 先尝试富形状（数组取首元素、对象取 URL 成员），最后才接受裸字符串；
// 全部不匹配视为归一化失败，该失败对请求是致命的。
func NormalizeOutput(out any) (string, error) {
	switch v := out.(type) {
	case []any:
		if len(v) == 0 {
			return "", normalizationError("provider returned an empty array")
		}
		return NormalizeOutput(v[0])
	case map[string]any:
		for _, key := range urlKeys {
			if s, ok := v[key].(string); ok && s != "" {
				return s, nil
			}
			// 成员本身还可以是对象或数组，继续下钻
			if nested, ok := v[key]; ok {
				if s, err := NormalizeOutput(nested); err == nil {
					return s, nil
				}
			}
		}
		return "", normalizationError("provider object has no url member")
	case string:
		if v == "" {
			return "", normalizationError("provider returned an empty string")
		}
		return v, nil
	default:
		return "", normalizationError(fmt.Sprintf("unsupported output type %T", out))
	}
}

func normalizationError(detail string) *apperrors.AppError {
	return apperrors.New(apperrors.CodeNormalizationFailed,
		"unexpected output shape from generation provider").WithDetail(detail)
}
