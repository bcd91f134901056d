package matting

import (
	"math"

	"github.com/montanaflynn/stats"
)

// MaxFeatherRadius 自适应羽化半径上限
const MaxFeatherRadius = 3

// DefaultAntiAliasMaxDist 抗锯齿过渡带默认宽度
const DefaultAntiAliasMaxDist = 3

// SobelMagnitude alpha 的 Sobel 梯度幅值，边框一圈为 0
func SobelMagnitude(alpha *Mask) *Field {
	w, h := alpha.W, alpha.H
	out := NewField(w, h)
	a := func(x, y int) float64 { return float64(alpha.Pix[y*w+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -a(x-1, y-1) - 2*a(x-1, y) - a(x-1, y+1) + a(x+1, y-1) + 2*a(x+1, y) + a(x+1, y+1)
			gy := -a(x-1, y-1) - 2*a(x, y-1) - a(x+1, y-1) + a(x-1, y+1) + 2*a(x, y+1) + a(x+1, y+1)
			out.Pix[y*w+x] = math.Hypot(gx, gy)
		}
	}
	return out
}

// AdaptiveFeather 由梯度 90 分位与最大值之比反推羽化半径：边缘越锐利半径越小
func AdaptiveFeather(alpha *Mask) int {
	mag := SobelMagnitude(alpha)
	vals := make([]float64, len(mag.Pix))
	for i, v := range mag.Pix {
		vals[i] = math.Round(v)
	}

	p90, err := stats.PercentileNearestRank(vals, 90)
	if err != nil {
		return 0
	}
	maxMag, err := stats.Max(vals)
	if err != nil || maxMag == 0 {
		maxMag = 1
	}
	v := math.Min(1, p90/maxMag)
	r := int(math.Round((1 - v) * MaxFeatherRadius))
	return max(0, min(MaxFeatherRadius, r))
}

// BoxBlurAlpha 均值模糊，窗口在边界处收缩；radius<=0 返回拷贝
func BoxBlurAlpha(alpha *Mask, radius int) (*Mask, error) {
	if err := alpha.valid(); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return alpha.Clone(), nil
	}
	blurred, err := BoxFilter(alpha.Float(), radius)
	if err != nil {
		return nil, err
	}
	return blurred.Mask(), nil
}

// AntiAliasAlpha 以 127 二值化，背景像素按到最近前景的距离生成线性渐变：
// 前景 255，距离 d<=maxDist 时为 255·(1-d/(maxDist+1))，更远为 0
func AntiAliasAlpha(alpha *Mask, maxDist int) (*Mask, error) {
	if err := alpha.valid(); err != nil {
		return nil, err
	}
	if maxDist < 0 {
		maxDist = 0
	}
	fg := binarize(alpha)
	dist, err := distanceTo(fg, alpha.W, alpha.H)
	if err != nil {
		return nil, err
	}

	out := NewMask(alpha.W, alpha.H)
	span := float64(maxDist + 1)
	for i, isFg := range fg {
		switch {
		case isFg:
			out.Pix[i] = 255
		case dist[i] > maxDist:
			out.Pix[i] = 0
		default:
			out.Pix[i] = clampByte(255 * (1 - float64(dist[i])/span))
		}
	}
	return out, nil
}
