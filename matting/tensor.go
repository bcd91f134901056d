package matting

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// 模型支持的输入边长
const (
	InputSizeSmall   = 224
	InputSizeDefault = 320
)

// normalizeEps min-max 归一化分母保护
const normalizeEps = 1e-6

// Tensor 平面（CHW）float32 张量，扁平缓冲区 + 显式形状
type Tensor struct {
	Data     []float32
	Channels int
	Height   int
	Width    int
}

// Dims NCHW 形状，N 固定为 1
func (t Tensor) Dims() []int {
	return []int{1, t.Channels, t.Height, t.Width}
}

// ValidInputSize 输入边长是否为模型支持的尺寸
func ValidInputSize(size int) bool {
	return size == InputSizeSmall || size == InputSizeDefault
}

// NewInputTensor 双线性缩放到 target×target，按通道平面排列并除以 255
func NewInputTensor(img image.Image, target int) (Tensor, error) {
	if !ValidInputSize(target) {
		return Tensor{}, &DimensionError{Stage: "input tensor", WantW: InputSizeDefault, WantH: InputSizeDefault, GotW: target, GotH: target}
	}
	if img == nil || img.Bounds().Empty() {
		return Tensor{}, ErrEmptyField
	}

	resized := image.NewNRGBA(image.Rect(0, 0, target, target))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	plane := target * target
	data := make([]float32, 3*plane)
	for y := 0; y < target; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < target; x++ {
			i := y*target + x
			data[i] = float32(row[x*4]) / 255
			data[plane+i] = float32(row[x*4+1]) / 255
			data[2*plane+i] = float32(row[x*4+2]) / 255
		}
	}
	return Tensor{Data: data, Channels: 3, Height: target, Width: target}, nil
}

// NormalizeLogits 将模型原始输出 min-max 到 [0,255]。
// 分母加 ε，全平输出得到全 0 而不是 NaN；非有限值不参与 min/max 并映射为 0
func NormalizeLogits(raw []float32, w, h int) (*Mask, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyField
	}
	if len(raw) != w*h {
		return nil, &DimensionError{Stage: "normalize", GotLen: len(raw), Expect: w * h}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}

	out := NewMask(w, h)
	if math.IsInf(lo, 1) {
		return out, nil
	}
	scale := 255 / (hi - lo + normalizeEps)
	for i, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out.Pix[i] = clampByte((f - lo) * scale)
	}
	return out, nil
}

// ToNRGBA 转为原点在 (0,0) 的 NRGBA
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return toOrigin(n)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
