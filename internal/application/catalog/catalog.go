// Package catalog 提供工具标识到外部模型的静态目录与解析能力
package catalog

import "sort"

// Family 模型族标签，配置期附加到目录条目上
type Family string

// 预定义模型族
const (
	FamilyFluxSchnell Family = "flux-schnell"
	FamilyFluxDev     Family = "flux-dev"
	FamilyFluxPro     Family = "flux-pro"
	FamilyFluxKontext Family = "flux-kontext"
	FamilyFluxRedux   Family = "flux-redux"
	FamilyFluxFill    Family = "flux-fill"
	FamilyFluxControl Family = "flux-control"
	FamilySDXL        Family = "sdxl"
	FamilySD35        Family = "sd-3.5"
	FamilyPhoton      Family = "photon"
	FamilyRecraft     Family = "recraft"
	FamilyIdeogram    Family = "ideogram"
	FamilySeedream    Family = "seedream"
	FamilyImagen      Family = "imagen"
	FamilyQwenImage   Family = "qwen-image"
	FamilyMiniMax     Family = "minimax"
	FamilySticker     Family = "sticker"
	FamilyGFPGAN      Family = "gfpgan"
	FamilyCodeFormer  Family = "codeformer"
	FamilyESRGAN      Family = "esrgan"
	FamilyClarity     Family = "clarity"
	FamilyRemBG       Family = "rembg"
	FamilyBecomeImage Family = "become-image"
)

// Entry 目录条目：一个外部托管模型及其面向工具的别名
type Entry struct {
	Owner  string
	Name   string
	Family Family

	// Aliases 覆盖该模型的全部营销工具 slug
	Aliases []string

	// RequiresImage 为 true 的条目对应的工具离开源图无意义，
	// 校验阶段直接拒绝而不是走适配期降级
	RequiresImage bool

	// DefaultPrompt 当请求未携带 prompt 时按工具语义注入的提示词
	DefaultPrompt string

	// Cost 单次生成扣除的积分数
	Cost int
}

// Identifier 返回 owner/name 形式的模型标识
func (e *Entry) Identifier() string {
	return e.Owner + "/" + e.Name
}

// entries 静态目录，进程启动后只读
var entries = []Entry{
	{
		Owner: "black-forest-labs", Name: "flux-schnell", Family: FamilyFluxSchnell,
		Aliases: []string{"ai-image-generator", "text-to-image", "flux-schnell", "fast-image-generator", "ai-art-generator"},
		Cost:    1,
	},
	{
		Owner: "black-forest-labs", Name: "flux-dev", Family: FamilyFluxDev,
		Aliases: []string{"flux-dev", "ai-photo-generator", "realistic-photo-generator", "ai-wallpaper-generator"},
		Cost:    2,
	},
	{
		Owner: "black-forest-labs", Name: "flux-1.1-pro", Family: FamilyFluxPro,
		Aliases: []string{"flux-pro", "hd-image-generator", "ai-poster-generator", "professional-image-generator"},
		Cost:    4,
	},
	{
		Owner: "black-forest-labs", Name: "flux-kontext-pro", Family: FamilyFluxKontext,
		Aliases:       []string{"pet-to-human", "ai-image-editor", "photo-to-art", "ai-photo-editor", "change-background", "ai-style-transfer"},
		RequiresImage: true,
		DefaultPrompt: "Apply the requested edit to the provided image while preserving the subject's identity and composition.",
		Cost:          4,
	},
	{
		Owner: "black-forest-labs", Name: "flux-kontext-max", Family: FamilyFluxKontext,
		Aliases:       []string{"ai-image-editor/pro", "photo-restyle-pro"},
		RequiresImage: true,
		DefaultPrompt: "Apply the requested edit to the provided image while preserving the subject's identity and composition.",
		Cost:          8,
	},
	{
		Owner: "black-forest-labs", Name: "flux-redux-dev", Family: FamilyFluxRedux,
		Aliases: []string{"image-variations", "ai-image-variation", "similar-image-generator"},
		Cost:    2,
	},
	{
		Owner: "black-forest-labs", Name: "flux-fill-pro", Family: FamilyFluxFill,
		Aliases: []string{"ai-inpainting", "object-remover", "magic-eraser"},
		Cost:    4,
	},
	{
		Owner: "black-forest-labs", Name: "flux-canny-pro", Family: FamilyFluxControl,
		Aliases: []string{"sketch-to-image", "line-art-to-image"},
		Cost:    4,
	},
	{
		Owner: "black-forest-labs", Name: "flux-depth-dev", Family: FamilyFluxControl,
		Aliases: []string{"depth-to-image", "ai-room-redesign"},
		Cost:    2,
	},
	{
		Owner: "stability-ai", Name: "sdxl", Family: FamilySDXL,
		Aliases: []string{"sdxl", "stable-diffusion", "ai-anime-generator", "anime-style", "fantasy-art-generator"},
		Cost:    1,
	},
	{
		Owner: "stability-ai", Name: "stable-diffusion-3.5-large", Family: FamilySD35,
		Aliases: []string{"sd3", "stable-diffusion-3", "ai-concept-art", "digital-painting-generator"},
		Cost:    2,
	},
	{
		Owner: "luma", Name: "photon", Family: FamilyPhoton,
		Aliases: []string{"photon", "cinematic-image-generator", "ai-photography"},
		Cost:    2,
	},
	{
		Owner: "luma", Name: "photon-flash", Family: FamilyPhoton,
		Aliases: []string{"photon-flash", "quick-photo-generator"},
		Cost:    1,
	},
	{
		Owner: "recraft-ai", Name: "recraft-v3", Family: FamilyRecraft,
		Aliases: []string{"ai-logo-generator", "logo-maker", "vector-art-generator", "ai-icon-generator", "brand-kit-generator"},
		Cost:    2,
	},
	{
		Owner: "recraft-ai", Name: "recraft-v3-svg", Family: FamilyRecraft,
		Aliases: []string{"svg-generator", "ai-svg-logo"},
		Cost:    4,
	},
	{
		Owner: "ideogram-ai", Name: "ideogram-v2", Family: FamilyIdeogram,
		Aliases: []string{"ai-text-on-image", "typography-generator", "ai-banner-generator", "quote-image-generator"},
		Cost:    2,
	},
	{
		Owner: "ideogram-ai", Name: "ideogram-v2-turbo", Family: FamilyIdeogram,
		Aliases: []string{"fast-typography-generator", "meme-text-generator"},
		Cost:    1,
	},
	{
		Owner: "bytedance", Name: "seedream-3", Family: FamilySeedream,
		Aliases: []string{"seedream", "ai-illustration-generator", "storybook-illustration"},
		Cost:    2,
	},
	{
		Owner: "google", Name: "imagen-3", Family: FamilyImagen,
		Aliases: []string{"imagen", "photorealistic-image-generator", "ai-stock-photo"},
		Cost:    4,
	},
	{
		Owner: "google", Name: "imagen-3-fast", Family: FamilyImagen,
		Aliases: []string{"imagen-fast", "quick-stock-photo"},
		Cost:    2,
	},
	{
		Owner: "qwen", Name: "qwen-image", Family: FamilyQwenImage,
		Aliases: []string{"qwen-image", "ai-chinese-art", "calligraphy-art-generator"},
		Cost:    1,
	},
	{
		Owner: "minimax", Name: "image-01", Family: FamilyMiniMax,
		Aliases: []string{"ai-portrait-generator", "ai-headshot-generator", "headshot", "linkedin-photo-generator"},
		Cost:    2,
	},
	{
		Owner: "fofr", Name: "sticker-maker", Family: FamilySticker,
		Aliases: []string{"ai-sticker-maker", "sticker-generator", "ai-emoji-generator"},
		Cost:    1,
	},
	{
		Owner: "fofr", Name: "become-image", Family: FamilyBecomeImage,
		Aliases:       []string{"ai-cosplay-generator", "become-character", "ai-costume"},
		RequiresImage: true,
		DefaultPrompt: "Transform the person in the provided photo into the requested character while keeping their facial identity.",
		Cost:          2,
	},
	{
		Owner: "tencentarc", Name: "gfpgan", Family: FamilyGFPGAN,
		Aliases:       []string{"old-photo-restoration", "face-restoration", "fix-old-photo"},
		RequiresImage: true,
		Cost:          1,
	},
	{
		Owner: "sczhou", Name: "codeformer", Family: FamilyCodeFormer,
		Aliases:       []string{"ai-face-enhancer", "blurry-face-fix", "photo-unblur"},
		RequiresImage: true,
		Cost:          1,
	},
	{
		Owner: "nightmareai", Name: "real-esrgan", Family: FamilyESRGAN,
		Aliases:       []string{"ai-image-upscaler", "image-upscaler", "photo-enlarger", "4k-upscaler"},
		RequiresImage: true,
		Cost:          1,
	},
	{
		Owner: "philz1337x", Name: "clarity-upscaler", Family: FamilyClarity,
		Aliases:       []string{"ai-photo-enhancer", "photo-enhancer", "image-quality-enhancer", "hd-photo-converter"},
		RequiresImage: true,
		DefaultPrompt: "masterpiece, best quality, highres",
		Cost:          2,
	},
	{
		Owner: "851-labs", Name: "background-remover", Family: FamilyRemBG,
		Aliases:       []string{"remove-background", "ai-image-editor/remove-background", "background-remover", "transparent-background-maker", "product-photo-cutout"},
		RequiresImage: true,
		Cost:          1,
	},
}

// byAlias 别名到条目的精确索引
var byAlias = func() map[string]*Entry {
	m := make(map[string]*Entry)
	for i := range entries {
		for _, a := range entries[i].Aliases {
			m[normalize(a)] = &entries[i]
		}
	}
	return m
}()

// byIdentifier 模型标识到条目的索引
var byIdentifier = func() map[string]*Entry {
	m := make(map[string]*Entry, len(entries))
	for i := range entries {
		m[entries[i].Identifier()] = &entries[i]
	}
	return m
}()

// ByIdentifier 按模型标识查找目录条目
func ByIdentifier(identifier string) *Entry {
	return byIdentifier[identifier]
}

// Entries 返回目录条目的只读快照，按 owner/name 排序
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identifier() < out[j].Identifier()
	})
	return out
}
