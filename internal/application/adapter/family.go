package adapter

import (
	"pixgen-ai-api/internal/application/catalog"
)

// numField 数值字段规则：来源知项、目标字段名、闭区间与缺省值
type numField struct {
	target  string
	source  string
	r       Range
	integer bool
	// imageOnly 仅在请求携带源图时写入（如 img2img 的强度参数）
	imageOnly bool
}

// boolField 布尔字段规则
type boolField struct {
	target string
	source string
	def    bool
	// always 为 false 时仅在请求显式携带该知项时写入
	always bool
}

// enumField 枚举字符串字段规则，allowed 为 nil 时透传任意非空字符串
type enumField struct {
	target  string
	source  string
	allowed []string
	def     string
}

// familySpec 模型族的输入契约：接受哪些字段、叫什么名字、取值范围是什么。
// 适配器只写入此处声明过的字段，未声明的生成端一律视为未知键拒绝。
type familySpec struct {
	// imageField 源图字段名，空串表示仅支持文生图
	imageField string
	// requiresImage 为 true 且请求未携带源图时，降级到 fallbackModel
	requiresImage bool
	fallbackModel string

	acceptsPrompt   bool
	negativePrompt  bool
	outputFormat    bool
	seed            bool
	aspectRatio     bool
	matchInputImage bool
	// aspectRatios 为 nil 时使用 defaultAspectRatios
	aspectRatios []string

	nums  []numField
	bools []boolField
	enums []enumField
}

// DefaultModel 目录未命中时使用的兜底模型
const DefaultModel = "black-forest-labs/flux-schnell"

// defaultAspectRatios 通用纵横比枚举集
var defaultAspectRatios = []string{
	"1:1", "16:9", "21:9", "3:2", "2:3", "4:5", "5:4", "3:4", "4:3", "9:16", "9:21",
}

var photonAspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9", "9:21", "21:9"}

var imagenAspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

var recraftSizes = []string{
	"1024x1024", "1365x1024", "1024x1365", "1536x1024", "1024x1536",
	"1820x1024", "1024x1820", "2048x1024", "1024x2048", "1434x1024",
	"1024x1434", "1280x1024", "1024x1280", "1707x1024", "1024x1707",
}

// familySpecs 模型族到输入契约的唯一映射。
// 新增模型族是数据变更而不是代码变更。
var familySpecs = map[catalog.Family]familySpec{
	catalog.FamilyFluxSchnell: {
		acceptsPrompt: true,
		outputFormat:  true,
		seed:          true,
		aspectRatio:   true,
		nums: []numField{
			{target: "num_outputs", source: "numOutputs", r: Range{1, 4, 1}, integer: true},
			{target: "num_inference_steps", source: "steps", r: Range{1, 4, 4}, integer: true},
			{target: "output_quality", source: "outputQuality", r: Range{0, 100, 80}, integer: true},
		},
		bools: []boolField{
			{target: "disable_safety_checker", source: "disableSafetyChecker"},
		},
	},
	catalog.FamilyFluxDev: {
		imageField:    "image",
		acceptsPrompt: true,
		outputFormat:  true,
		seed:          true,
		aspectRatio:   true,
		nums: []numField{
			{target: "guidance", source: "guidanceScale", r: Range{0, 10, 3}},
			{target: "num_inference_steps", source: "steps", r: Range{1, 50, 28}, integer: true},
			{target: "num_outputs", source: "numOutputs", r: Range{1, 4, 1}, integer: true},
			{target: "output_quality", source: "outputQuality", r: Range{0, 100, 80}, integer: true},
			{target: "prompt_strength", source: "promptStrength", r: Range{0, 1, 0.8}, imageOnly: true},
		},
		bools: []boolField{
			{target: "disable_safety_checker", source: "disableSafetyChecker"},
		},
	},
	catalog.FamilyFluxPro: {
		imageField:    "image_prompt",
		acceptsPrompt: true,
		outputFormat:  true,
		seed:          true,
		aspectRatio:   true,
		nums: []numField{
			{target: "steps", source: "steps", r: Range{1, 50, 25}, integer: true},
			{target: "guidance", source: "guidanceScale", r: Range{2, 5, 3}},
			{target: "safety_tolerance", source: "safetyTolerance", r: Range{1, 6, 2}, integer: true},
		},
	},
	catalog.FamilyFluxKontext: {
		imageField:      "input_image",
		requiresImage:   true,
		fallbackModel:   "black-forest-labs/flux-dev",
		acceptsPrompt:   true,
		outputFormat:    true,
		seed:            true,
		aspectRatio:     true,
		matchInputImage: true,
		nums: []numField{
			{target: "safety_tolerance", source: "safetyTolerance", r: Range{0, 6, 2}, integer: true},
		},
	},
	catalog.FamilyFluxRedux: {
		imageField:    "redux_image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		outputFormat:  true,
		seed:          true,
		aspectRatio:   true,
		nums: []numField{
			{target: "guidance", source: "guidanceScale", r: Range{0, 10, 3}},
			{target: "num_inference_steps", source: "steps", r: Range{1, 50, 28}, integer: true},
			{target: "num_outputs", source: "numOutputs", r: Range{1, 4, 1}, integer: true},
			{target: "output_quality", source: "outputQuality", r: Range{0, 100, 80}, integer: true},
		},
	},
	catalog.FamilyFluxFill: {
		imageField:    "image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		acceptsPrompt: true,
		outputFormat:  true,
		seed:          true,
		nums: []numField{
			{target: "guidance", source: "guidanceScale", r: Range{0, 100, 30}},
			{target: "steps", source: "steps", r: Range{15, 50, 50}, integer: true},
			{target: "safety_tolerance", source: "safetyTolerance", r: Range{0, 6, 2}, integer: true},
		},
		enums: []enumField{
			{target: "mask", source: "maskUrl"},
		},
	},
	catalog.FamilyFluxControl: {
		imageField:    "control_image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		acceptsPrompt: true,
		outputFormat:  true,
		seed:          true,
		nums: []numField{
			{target: "guidance", source: "guidanceScale", r: Range{1, 100, 30}},
			{target: "steps", source: "steps", r: Range{15, 50, 50}, integer: true},
			{target: "safety_tolerance", source: "safetyTolerance", r: Range{0, 6, 2}, integer: true},
		},
	},
	catalog.FamilySDXL: {
		imageField:     "image",
		acceptsPrompt:  true,
		negativePrompt: true,
		seed:           true,
		nums: []numField{
			{target: "width", source: "width", r: Range{256, 2048, 1024}, integer: true},
			{target: "height", source: "height", r: Range{256, 2048, 1024}, integer: true},
			{target: "num_inference_steps", source: "steps", r: Range{1, 500, 50}, integer: true},
			{target: "guidance_scale", source: "guidanceScale", r: Range{1, 50, 7.5}},
			{target: "num_outputs", source: "numOutputs", r: Range{1, 4, 1}, integer: true},
			{target: "prompt_strength", source: "promptStrength", r: Range{0, 1, 0.8}, imageOnly: true},
		},
		enums: []enumField{
			{
				target: "scheduler", source: "scheduler", def: "K_EULER",
				allowed: []string{"DDIM", "DPMSolverMultistep", "HeunDiscrete", "KarrasDPM", "K_EULER_ANCESTRAL", "K_EULER", "PNDM"},
			},
		},
	},
	catalog.FamilySD35: {
		imageField:     "image",
		acceptsPrompt:  true,
		negativePrompt: true,
		outputFormat:   true,
		seed:           true,
		aspectRatio:    true,
		nums: []numField{
			{target: "cfg", source: "guidanceScale", r: Range{0, 20, 4.5}},
			{target: "steps", source: "steps", r: Range{1, 50, 40}, integer: true},
			{target: "prompt_strength", source: "promptStrength", r: Range{0, 1, 0.85}, imageOnly: true},
		},
	},
	catalog.FamilyPhoton: {
		imageField:    "image_reference_url",
		acceptsPrompt: true,
		seed:          true,
		aspectRatio:   true,
		aspectRatios:  photonAspectRatios,
		nums: []numField{
			{target: "image_reference_weight", source: "imageReferenceWeight", r: Range{0, 1, 0.85}, imageOnly: true},
		},
	},
	catalog.FamilyRecraft: {
		acceptsPrompt: true,
		enums: []enumField{
			{target: "size", source: "size", allowed: recraftSizes, def: "1024x1024"},
			{
				target: "style", source: "style", def: "any",
				allowed: []string{"any", "realistic_image", "digital_illustration", "vector_illustration", "icon"},
			},
		},
	},
	catalog.FamilyIdeogram: {
		acceptsPrompt:  true,
		negativePrompt: true,
		seed:           true,
		aspectRatio:    true,
		enums: []enumField{
			{
				target: "style_type", source: "styleType", def: "Auto",
				allowed: []string{"None", "Auto", "General", "Realistic", "Design", "Render 3D", "Anime"},
			},
			{
				target: "magic_prompt_option", source: "magicPrompt", def: "Auto",
				allowed: []string{"Auto", "On", "Off"},
			},
		},
	},
	catalog.FamilySeedream: {
		acceptsPrompt: true,
		seed:          true,
		aspectRatio:   true,
		nums: []numField{
			{target: "guidance_scale", source: "guidanceScale", r: Range{1, 10, 2.5}},
		},
		enums: []enumField{
			{target: "size", source: "size", allowed: []string{"small", "regular", "big"}, def: "regular"},
		},
	},
	catalog.FamilyImagen: {
		acceptsPrompt: true,
		aspectRatio:   true,
		aspectRatios:  imagenAspectRatios,
		enums: []enumField{
			{
				target: "safety_filter_level", source: "safetyFilterLevel", def: "block_only_high",
				allowed: []string{"block_low_and_above", "block_medium_and_above", "block_only_high"},
			},
		},
	},
	catalog.FamilyQwenImage: {
		imageField:     "image",
		acceptsPrompt:  true,
		negativePrompt: true,
		outputFormat:   true,
		seed:           true,
		aspectRatio:    true,
		nums: []numField{
			{target: "guidance", source: "guidanceScale", r: Range{0, 10, 4}},
			{target: "num_inference_steps", source: "steps", r: Range{10, 50, 30}, integer: true},
			{target: "strength", source: "strength", r: Range{0, 1, 0.9}, imageOnly: true},
		},
	},
	catalog.FamilyMiniMax: {
		imageField:    "subject_reference",
		acceptsPrompt: true,
		aspectRatio:   true,
		nums: []numField{
			{target: "number_of_images", source: "numOutputs", r: Range{1, 9, 1}, integer: true},
		},
		bools: []boolField{
			{target: "prompt_optimizer", source: "promptOptimizer", def: true, always: true},
		},
	},
	catalog.FamilySticker: {
		acceptsPrompt: true,
		outputFormat:  true,
		seed:          true,
		nums: []numField{
			{target: "steps", source: "steps", r: Range{10, 50, 17}, integer: true},
			{target: "output_quality", source: "outputQuality", r: Range{0, 100, 90}, integer: true},
			{target: "num_outputs", source: "numOutputs", r: Range{1, 4, 1}, integer: true},
		},
	},
	catalog.FamilyGFPGAN: {
		imageField:    "img",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		nums: []numField{
			{target: "scale", source: "scale", r: Range{1, 4, 2}},
		},
		enums: []enumField{
			{
				target: "version", source: "version", def: "v1.4",
				allowed: []string{"v1.2", "v1.3", "v1.4", "RestoreFormer"},
			},
		},
	},
	catalog.FamilyCodeFormer: {
		imageField:    "image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		nums: []numField{
			{target: "codeformer_fidelity", source: "fidelity", r: Range{0, 1, 0.5}},
			{target: "upscale", source: "upscale", r: Range{1, 4, 2}, integer: true},
		},
		bools: []boolField{
			{target: "face_upsample", source: "faceUpsample", def: true, always: true},
			{target: "background_enhance", source: "backgroundEnhance", def: true, always: true},
		},
	},
	catalog.FamilyESRGAN: {
		imageField:    "image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		nums: []numField{
			{target: "scale", source: "scale", r: Range{0, 10, 4}},
		},
		bools: []boolField{
			{target: "face_enhance", source: "faceEnhance", def: false, always: true},
		},
	},
	catalog.FamilyClarity: {
		imageField:     "image",
		requiresImage:  true,
		fallbackModel:  "black-forest-labs/flux-dev",
		acceptsPrompt:  true,
		negativePrompt: true,
		outputFormat:   true,
		seed:           true,
		nums: []numField{
			{target: "scale_factor", source: "scale", r: Range{1, 4, 2}},
			{target: "creativity", source: "creativity", r: Range{0, 1, 0.35}},
			{target: "resemblance", source: "resemblance", r: Range{0, 3, 0.6}},
			{target: "dynamic", source: "dynamic", r: Range{1, 50, 6}},
		},
	},
	catalog.FamilyRemBG: {
		imageField:    "image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		nums: []numField{
			{target: "threshold", source: "threshold", r: Range{0, 1, 0}},
		},
		bools: []boolField{
			{target: "reverse", source: "reverse"},
		},
		enums: []enumField{
			{target: "format", source: "outputFormat", allowed: []string{"png", "webp"}, def: "png"},
		},
	},
	catalog.FamilyBecomeImage: {
		imageField:    "image",
		requiresImage: true,
		fallbackModel: "black-forest-labs/flux-dev",
		acceptsPrompt: true,
		seed:          true,
		nums: []numField{
			{target: "denoising_strength", source: "strength", r: Range{0, 1, 0.75}},
			{target: "instant_id_strength", source: "identityStrength", r: Range{0, 1, 0.8}},
		},
		enums: []enumField{
			{target: "image_to_become", source: "targetImageUrl"},
		},
	},
}

// specForModel 按模型标识取族契约，未知标识退回兜底模型的契约
func specForModel(identifier string) (familySpec, catalog.Family) {
	if e := catalog.ByIdentifier(identifier); e != nil {
		if s, ok := familySpecs[e.Family]; ok {
			return s, e.Family
		}
	}
	return familySpecs[catalog.FamilyFluxSchnell], catalog.FamilyFluxSchnell
}
