package model

// 掩码来源
const (
	SourceModel = "model"
	SourceMask  = "mask"
)

// CutoutResult 抠图结果
type CutoutResult struct {
	Key           string  `json:"key"`
	MD5           string  `json:"md5"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Source        string  `json:"source"` // model, mask
	Threshold     int     `json:"threshold"`
	FeatherRadius int     `json:"feather_radius"`
	Coverage      float64 `json:"coverage"`
	BoundingBox   BBox    `json:"bounding_box"`
	Image         string  `json:"image"` // base64编码的PNG，带alpha
	Alpha         string  `json:"alpha"` // base64编码的灰度PNG
	Timestamp     int64   `json:"timestamp"`
}

// BBox 边界框
type BBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CutoutParams 单次请求的精修参数覆盖，未填写的字段使用服务端配置；
// threshold 与 feather_radius 传 -1 表示自动选择
type CutoutParams struct {
	Threshold           *int     `form:"threshold" json:"threshold,omitempty"`
	FeatherRadius       *int     `form:"feather_radius" json:"feather_radius,omitempty"`
	GuidedRadius        *int     `form:"guided_radius" json:"guided_radius,omitempty"`
	GuidedEps           *float64 `form:"guided_eps" json:"guided_eps,omitempty"`
	TrimapBand          *int     `form:"trimap_band" json:"trimap_band,omitempty"`
	AntiAliasMaxDist    *int     `form:"anti_alias_max_dist" json:"anti_alias_max_dist,omitempty"`
	DespillSampleRadius *int     `form:"despill_sample_radius" json:"despill_sample_radius,omitempty"`
	DespillStrength     *float64 `form:"despill_strength" json:"despill_strength,omitempty"`
	DespillHueShift     *float64 `form:"despill_hue_shift" json:"despill_hue_shift,omitempty"`
	MorphologyRadius    *int     `form:"morphology_radius" json:"morphology_radius,omitempty"`
	UseTrimap           *bool    `form:"use_trimap" json:"use_trimap,omitempty"`
	UseMorphology       *bool    `form:"use_morphology" json:"use_morphology,omitempty"`
	UseDespill          *bool    `form:"use_despill" json:"use_despill,omitempty"`
	BlendOriginal       *bool    `form:"blend_original" json:"blend_original,omitempty"`
	// BackingColor #rrggbb，transparent 表示透明背景
	BackingColor *string `form:"backing_color" json:"backing_color,omitempty"`
}

// CutoutResponse 抠图响应
type CutoutResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Cached  bool          `json:"cached"`
	Data    *CutoutResult `json:"data,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
