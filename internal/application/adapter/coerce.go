package adapter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat 宽松数值转换：原生数值或其字符串表示。
// NaN/Inf 与不可解析的值一律视为失败。
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case float32:
		return toFloat(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	default:
		return 0, false
	}
}

// toInt 宽松整数转换，小数位直接截断
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// toBool 宽松布尔转换：原生布尔或 "true"/"false"/"1"/"0"
func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	case float64:
		if x == 1 {
			return true, true
		}
		if x == 0 {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}

// toString 只接受真正的字符串，其余类型视为缺失
func toString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Range 数值字段的闭区间与缺省值
type Range struct {
	Min float64
	Max float64
	Def float64
}

// clampFloat 解析失败退回缺省值，成功则夹入闭区间
func clampFloat(v any, r Range) float64 {
	f, ok := toFloat(v)
	if !ok {
		return r.Def
	}
	if f < r.Min {
		return r.Min
	}
	if f > r.Max {
		return r.Max
	}
	return f
}

// clampInt 同 clampFloat，结果取整
func clampInt(v any, r Range) int {
	return int(clampFloat(v, r))
}
