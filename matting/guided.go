package matting

import (
	"image"
)

// 亮度权重
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// DefaultGuidedEps 引导滤波默认正则项
const DefaultGuidedEps = 1e-3

// Luma 从 RGBA 引导图取灰度（[0,1]）
func Luma(guide *image.NRGBA) *Field {
	b := guide.Bounds()
	w, h := b.Dx(), b.Dy()
	out := NewField(w, h)
	for y := 0; y < h; y++ {
		row := guide.Pix[y*guide.Stride : y*guide.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3 : x*4+3]
			out.Pix[y*w+x] = (lumaR*float64(p[0]) + lumaG*float64(p[1]) + lumaB*float64(p[2])) / 255.0
		}
	}
	return out
}

// GuidedFilter 以全分辨率彩色图为引导，对 [0,255] 的粗糙 alpha 做边缘保持平滑。
// p 直接除以 255 归一化（不再做 min-max，min-max 只在 NormalizeLogits 里做一次）。
// eps 越小越贴合引导图边缘，radius 决定空间支撑。
func GuidedFilter(guide *image.NRGBA, p *Field, radius int, eps float64) (*Mask, error) {
	if err := p.valid(); err != nil {
		return nil, err
	}
	b := guide.Bounds()
	if err := sameSize("guided filter", p.W, p.H, b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	if eps <= 0 {
		eps = DefaultGuidedEps
	}
	if radius < 0 {
		radius = 0
	}

	w, h := p.W, p.H
	n := w * h
	I := Luma(guide).Pix

	P := make([]float64, n)
	Ip := make([]float64, n)
	II := make([]float64, n)
	for i := 0; i < n; i++ {
		v := p.Pix[i] / 255.0
		if !(v > 0) {
			v = 0
		} else if v > 1 {
			v = 1
		}
		P[i] = v
		Ip[i] = I[i] * v
		II[i] = I[i] * I[i]
	}

	meanI := boxed(I, w, h, radius)
	meanP := boxed(P, w, h, radius)
	meanIp := boxed(Ip, w, h, radius)
	meanII := boxed(II, w, h, radius)

	// 局部线性系数 q = a·I + b
	a := make([]float64, n)
	bb := make([]float64, n)
	for i := 0; i < n; i++ {
		cov := meanIp[i] - meanI[i]*meanP[i]
		variance := meanII[i] - meanI[i]*meanI[i]
		if variance < 0 {
			variance = 0
		}
		a[i] = cov / (variance + eps)
		bb[i] = meanP[i] - a[i]*meanI[i]
	}

	meanA := boxed(a, w, h, radius)
	meanB := boxed(bb, w, h, radius)

	out := NewMask(w, h)
	for i := 0; i < n; i++ {
		out.Pix[i] = clampByte((meanA[i]*I[i] + meanB[i]) * 255.0)
	}
	return out, nil
}

func boxed(src []float64, w, h, r int) []float64 {
	dst := make([]float64, len(src))
	if r <= 0 {
		copy(dst, src)
		return dst
	}
	boxMean(src, dst, w, h, r)
	return dst
}
