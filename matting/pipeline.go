package matting

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidOptions 参数越界
var ErrInvalidOptions = errors.New("matting: invalid options")

// 默认参数
const (
	DefaultGuidedRadius     = 8
	DefaultMorphologyRadius = 1
	maxOverrideFeather      = 32
)

// Options 精修流水线参数，零值字段不代表默认值，请从 DefaultOptions 开始修改
type Options struct {
	// Threshold 为空时自动选择（Otsu，退化时取 90 分位）
	Threshold *int `json:"threshold,omitempty"`
	// FeatherRadius 为空时由梯度统计自适应计算
	FeatherRadius *int `json:"feather_radius,omitempty"`

	GuidedRadius int     `json:"guided_radius"`
	GuidedEps    float64 `json:"guided_eps"`

	UseTrimap  bool `json:"use_trimap"`
	TrimapBand int  `json:"trimap_band"`

	// AntiAliasMaxDist <=0 时取 max(1, 羽化半径)
	AntiAliasMaxDist int `json:"anti_alias_max_dist"`

	UseMorphology    bool `json:"use_morphology"`
	MorphologyRadius int  `json:"morphology_radius"`

	UseDespill          bool    `json:"use_despill"`
	DespillSampleRadius int     `json:"despill_sample_radius"`
	DespillStrength     float64 `json:"despill_strength"`
	DespillHueShift     float64 `json:"despill_hue_shift"`

	// BlendOriginal 在平坦区域保留重采样后的原始 alpha
	BlendOriginal  bool    `json:"blend_original"`
	BlendThreshold float64 `json:"blend_threshold"`

	// Backing 为空时输出透明背景
	Backing *color.NRGBA `json:"backing,omitempty"`
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		GuidedRadius:        DefaultGuidedRadius,
		GuidedEps:           DefaultGuidedEps,
		TrimapBand:          DefaultTrimapBand,
		AntiAliasMaxDist:    DefaultAntiAliasMaxDist,
		MorphologyRadius:    DefaultMorphologyRadius,
		UseDespill:          true,
		DespillSampleRadius: DefaultDespillSampleRadius,
		DespillStrength:     DefaultDespillStrength,
		BlendThreshold:      DefaultBlendThreshold,
	}
}

// Validate 检查参数范围
func (o Options) Validate() error {
	switch {
	case o.Threshold != nil && (*o.Threshold < 0 || *o.Threshold > 255):
		return fmt.Errorf("%w: threshold %d out of [0,255]", ErrInvalidOptions, *o.Threshold)
	case o.FeatherRadius != nil && (*o.FeatherRadius < 0 || *o.FeatherRadius > maxOverrideFeather):
		return fmt.Errorf("%w: feather radius %d out of [0,%d]", ErrInvalidOptions, *o.FeatherRadius, maxOverrideFeather)
	case o.GuidedRadius < 0:
		return fmt.Errorf("%w: guided radius %d", ErrInvalidOptions, o.GuidedRadius)
	case !(o.GuidedEps > 0):
		return fmt.Errorf("%w: guided eps %g must be positive", ErrInvalidOptions, o.GuidedEps)
	case o.TrimapBand < 0:
		return fmt.Errorf("%w: trimap band %d", ErrInvalidOptions, o.TrimapBand)
	case o.MorphologyRadius < 0:
		return fmt.Errorf("%w: morphology radius %d", ErrInvalidOptions, o.MorphologyRadius)
	case o.DespillSampleRadius < 0:
		return fmt.Errorf("%w: despill sample radius %d", ErrInvalidOptions, o.DespillSampleRadius)
	case o.DespillStrength < 0 || o.DespillStrength > 1:
		return fmt.Errorf("%w: despill strength %g out of [0,1]", ErrInvalidOptions, o.DespillStrength)
	case o.DespillHueShift < 0 || o.DespillHueShift > 1:
		return fmt.Errorf("%w: despill hue shift %g out of [0,1]", ErrInvalidOptions, o.DespillHueShift)
	}
	return nil
}

// Result 精修结果
type Result struct {
	Alpha         *Mask
	Trimap        *Mask // 未启用 trimap 时为 nil
	Image         *image.NRGBA
	Threshold     uint8
	FeatherRadius int
}

// Pipeline 单次调用内所有缓冲区都是局部分配的，可被多个 goroutine 同时使用
type Pipeline struct {
	opts   Options
	logger *zap.Logger
}

// NewPipeline 创建流水线，logger 为空时不输出日志
func NewPipeline(opts Options, logger *zap.Logger) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{opts: opts, logger: logger}, nil
}

// Options 返回当前参数
func (p *Pipeline) Options() Options {
	return p.opts
}

// Refine 把低分辨率粗糙 alpha 精修到 guide 的分辨率并合成输出。
// raw 可以来自任意来源，只要形状有效；guide 不会被修改
func (p *Pipeline) Refine(guide *image.NRGBA, raw *Mask) (*Result, error) {
	if guide == nil || guide.Bounds().Empty() {
		return nil, ErrEmptyField
	}
	if err := raw.valid(); err != nil {
		return nil, err
	}
	guide = toOrigin(guide)
	w, h := guide.Rect.Dx(), guide.Rect.Dy()
	o := p.opts
	start := time.Now()

	resized, err := ResizeBilinear(raw.Float(), w, h)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	p.logger.Debug("resampled mask",
		zap.Int("src_w", raw.W), zap.Int("src_h", raw.H),
		zap.Int("dst_w", w), zap.Int("dst_h", h))

	alpha, err := GuidedFilter(guide, resized, o.GuidedRadius, o.GuidedEps)
	if err != nil {
		return nil, fmt.Errorf("guided filter: %w", err)
	}
	p.logger.Debug("guided filter applied", zap.Int("radius", o.GuidedRadius), zap.Float64("eps", o.GuidedEps))

	if o.BlendOriginal {
		if alpha, err = BlendAlpha(resized.Mask(), alpha, o.BlendThreshold); err != nil {
			return nil, fmt.Errorf("blend: %w", err)
		}
		p.logger.Debug("blended with original alpha", zap.Float64("threshold", o.BlendThreshold))
	}

	var thresh uint8
	if o.Threshold != nil {
		thresh = uint8(*o.Threshold)
	} else {
		thresh = SelectThreshold(alpha.Pix)
	}
	alpha = ApplyThreshold(alpha, thresh)
	p.logger.Debug("threshold applied", zap.Uint8("threshold", thresh), zap.Bool("override", o.Threshold != nil))

	if o.UseMorphology {
		if alpha, err = MorphCleanup(alpha, o.MorphologyRadius); err != nil {
			return nil, fmt.Errorf("morphology: %w", err)
		}
		p.logger.Debug("morphology cleanup", zap.Int("radius", o.MorphologyRadius))
	}

	var trimap *Mask
	if o.UseTrimap {
		if trimap, err = GenerateTrimap(alpha, o.TrimapBand); err != nil {
			return nil, fmt.Errorf("trimap: %w", err)
		}
		p.logger.Debug("trimap generated", zap.Int("band", o.TrimapBand))
	}

	var feather int
	if o.FeatherRadius != nil {
		feather = *o.FeatherRadius
	} else {
		feather = AdaptiveFeather(alpha)
	}
	if alpha, err = BoxBlurAlpha(alpha, feather); err != nil {
		return nil, fmt.Errorf("feather: %w", err)
	}

	maxDist := o.AntiAliasMaxDist
	if maxDist <= 0 {
		maxDist = max(1, feather)
	}
	if alpha, err = AntiAliasAlpha(alpha, maxDist); err != nil {
		return nil, fmt.Errorf("anti-alias: %w", err)
	}
	p.logger.Debug("feathered edges", zap.Int("feather", feather), zap.Int("max_dist", maxDist))

	if trimap != nil {
		if alpha, err = ClampToTrimap(alpha, trimap); err != nil {
			return nil, fmt.Errorf("trimap clamp: %w", err)
		}
	}

	colour := guide
	if o.UseDespill {
		var contours int
		colour, contours, err = decontaminate(guide, alpha, DespillOptions{
			SampleRadius: o.DespillSampleRadius,
			Strength:     o.DespillStrength,
			HueShift:     o.DespillHueShift,
		})
		if err != nil {
			return nil, fmt.Errorf("despill: %w", err)
		}
		p.logger.Debug("despill applied", zap.Int("contour_pixels", contours))
	}

	out, err := Composite(colour, alpha, o.Backing)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	p.logger.Debug("refine finished", zap.Duration("cost", time.Since(start)))

	return &Result{
		Alpha:         alpha,
		Trimap:        trimap,
		Image:         out,
		Threshold:     thresh,
		FeatherRadius: feather,
	}, nil
}
