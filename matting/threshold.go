package matting

import "math"

// 当 Otsu 给出的阈值低于该值时认为掩码缺乏双峰结构
const (
	degenerateThreshold = 5
	fallbackPercentile  = 0.9
)

func histogram(values []uint8) (hist [256]int) {
	for _, v := range values {
		hist[v]++
	}
	return hist
}

// OtsuThreshold 最大化类间方差 wB·wF·(mB-mF)² 选取全局阈值，并列时取最小的 t
func OtsuThreshold(values []uint8) uint8 {
	hist := histogram(values)
	total := len(values)
	if total == 0 {
		return 0
	}

	var sum float64
	for t, c := range hist {
		sum += float64(t * c)
	}

	var sumB, best float64
	wB := 0
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// PercentileThreshold 返回累计直方图首次达到 p·N 的最小 t
func PercentileThreshold(values []uint8, p float64) uint8 {
	if len(values) == 0 {
		return 255
	}
	p = math.Max(0, math.Min(1, p))
	hist := histogram(values)
	target := int(math.Round(float64(len(values)) * p))
	cum := 0
	for t := 0; t < 256; t++ {
		cum += hist[t]
		if cum >= target {
			return uint8(t)
		}
	}
	return 255
}

// SelectThreshold Otsu 优先，退化时回退到 90 分位。
// 阈值过低且 (t,127] 内仍有像素才算退化；纯二值掩码的 t=0 本身就是完美分割。
func SelectThreshold(values []uint8) uint8 {
	t := OtsuThreshold(values)
	if t >= degenerateThreshold {
		return t
	}
	hist := histogram(values)
	for v := int(t) + 1; v <= 127; v++ {
		if hist[v] > 0 {
			return PercentileThreshold(values, fallbackPercentile)
		}
	}
	return t
}

// ApplyThreshold 不超过 t 的像素清零，其余保留原值（保留软边）
func ApplyThreshold(alpha *Mask, t uint8) *Mask {
	out := NewMask(alpha.W, alpha.H)
	for i, v := range alpha.Pix {
		if v > t {
			out.Pix[i] = v
		}
	}
	return out
}
