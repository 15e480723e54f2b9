package generation

import (
	"testing"

	apperrors "pixgen-ai-api/pkg/errors"
)

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"bare string", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"string array", []any{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}, "https://cdn.example.com/a.png"},
		{"object url", map[string]any{"url": "https://cdn.example.com/a.png"}, "https://cdn.example.com/a.png"},
		{"object output", map[string]any{"output": "https://cdn.example.com/a.png"}, "https://cdn.example.com/a.png"},
		{"object image", map[string]any{"image": "https://cdn.example.com/a.png"}, "https://cdn.example.com/a.png"},
		{"nested array in object", map[string]any{"output": []any{"https://cdn.example.com/a.png"}}, "https://cdn.example.com/a.png"},
		{"array of objects", []any{map[string]any{"url": "https://cdn.example.com/a.png"}}, "https://cdn.example.com/a.png"},
	}

	for _, tt := range tests {
		got, err := NormalizeOutput(tt.in)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeOutputFailures(t *testing.T) {
	cases := []struct {
		name string
		in   any
	}{
		{"empty array", []any{}},
		{"empty string", ""},
		{"object without url", map[string]any{"status": "done"}},
		{"number", float64(42)},
		{"nil", nil},
		{"array of numbers", []any{float64(1)}},
	}

	for _, tt := range cases {
		_, err := NormalizeOutput(tt.in)
		if err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeNormalizationFailed {
			t.Fatalf("%s: code = %s, want %s", tt.name, appErr.Code, apperrors.CodeNormalizationFailed)
		}
	}
}
