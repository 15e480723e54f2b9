package catalog

import (
	"testing"
)

func TestResolveExactAlias(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"pet-to-human", "black-forest-labs/flux-kontext-pro"},
		{"ai-image-generator", "black-forest-labs/flux-schnell"},
		{"remove-background", "851-labs/background-remover"},
		{"ai-image-editor/remove-background", "851-labs/background-remover"},
		{"ai-photo-enhancer", "philz1337x/clarity-upscaler"},
		{"old-photo-restoration", "tencentarc/gfpgan"},
		{"headshot", "minimax/image-01"},
		{"ai-logo-generator", "recraft-ai/recraft-v3"},
	}

	for _, tt := range tests {
		res := Resolve(tt.slug)
		if res.Identifier != tt.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tt.slug, res.Identifier, tt.want)
		}
		if res.Confidence != 100 {
			t.Fatalf("Resolve(%q) confidence = %v, want 100", tt.slug, res.Confidence)
		}
		if !res.Resolved(tt.slug) {
			t.Fatalf("Resolve(%q) should be resolved", tt.slug)
		}
		if res.Matched == nil {
			t.Fatalf("Resolve(%q) matched entry is nil", tt.slug)
		}
	}
}

func TestResolveNormalization(t *testing.T) {
	for _, slug := range []string{"Pet_To_Human", " pet-to-human ", "/pet-to-human/", "pet to human"} {
		res := Resolve(slug)
		if res.Identifier != "black-forest-labs/flux-kontext-pro" {
			t.Fatalf("Resolve(%q) = %q, want flux-kontext-pro", slug, res.Identifier)
		}
		if res.Confidence != 100 {
			t.Fatalf("Resolve(%q) confidence = %v, want 100", slug, res.Confidence)
		}
	}
}

func TestResolveLastSegment(t *testing.T) {
	res := Resolve("tools/pet-to-human")
	if res.Identifier != "black-forest-labs/flux-kontext-pro" {
		t.Fatalf("Resolve nested slug = %q, want flux-kontext-pro", res.Identifier)
	}
	if res.Confidence != 100 {
		t.Fatalf("confidence = %v, want 100", res.Confidence)
	}
}

func TestResolveDeterminism(t *testing.T) {
	slugs := []string{"pet-to-human", "photo-generator", "image-upscaler-tool", "anime-style-maker"}
	for _, slug := range slugs {
		first := Resolve(slug)
		for i := 0; i < 50; i++ {
			got := Resolve(slug)
			if got.Identifier != first.Identifier || got.Confidence != first.Confidence {
				t.Fatalf("Resolve(%q) is not deterministic: %+v vs %+v", slug, first, got)
			}
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	res := Resolve("zzz-unknown-gadget")
	if res.Resolved("zzz-unknown-gadget") {
		t.Fatalf("unknown slug should not resolve, got %+v", res)
	}

	if res := Resolve(""); res.Identifier != "" || res.Confidence != 0 {
		t.Fatalf("empty slug should produce zero resolution, got %+v", res)
	}
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		slug string
		want int
	}{
		{"pet-to-human", CriticalThreshold},
		{"remove-background", CriticalThreshold},
		{"ai-image-editor/remove-background", CriticalThreshold},
		{"ai-photo-enhancer", CriticalThreshold},
		{"old-photo-restoration", CriticalThreshold},
		{"ai-image-generator", DefaultThreshold},
		{"something-else", DefaultThreshold},
	}
	for _, tt := range tests {
		if got := Threshold(tt.slug); got != tt.want {
			t.Fatalf("Threshold(%q) = %d, want %d", tt.slug, got, tt.want)
		}
	}
}

func TestResolvePartialMatch(t *testing.T) {
	// 非别名但与 flux-schnell 的别名高度重合
	res := Resolve("fast-image-generator-online")
	if res.Identifier != "black-forest-labs/flux-schnell" {
		t.Fatalf("partial match = %q, want flux-schnell", res.Identifier)
	}
	if res.Confidence >= 100 {
		t.Fatalf("partial match should score below 100, got %v", res.Confidence)
	}
	if !res.Resolved("fast-image-generator-online") {
		t.Fatalf("partial match should clear the default threshold, confidence %v", res.Confidence)
	}
}

func TestEntriesSortedSnapshot(t *testing.T) {
	a := Entries()
	b := Entries()
	if len(a) == 0 {
		t.Fatal("catalog must not be empty")
	}
	for i := 1; i < len(a); i++ {
		if a[i-1].Identifier() >= a[i].Identifier() {
			t.Fatalf("entries not sorted at %d: %s >= %s", i, a[i-1].Identifier(), a[i].Identifier())
		}
	}
	// 快照相互独立
	a[0].Owner = "mutated"
	if b[0].Owner == "mutated" {
		t.Fatal("Entries must return an independent copy")
	}
}

func TestByIdentifier(t *testing.T) {
	e := ByIdentifier("black-forest-labs/flux-schnell")
	if e == nil || e.Name != "flux-schnell" {
		t.Fatalf("ByIdentifier returned %+v", e)
	}
	if ByIdentifier("nobody/nothing") != nil {
		t.Fatal("unknown identifier should return nil")
	}
}
