package matting

// DefaultBlendThreshold 局部方差启发阈值
const DefaultBlendThreshold = 10

// BlendAlpha 按原始 alpha 的 3×3 局部方差选择：方差·100 超过 thresh 的噪声区域取精修值，
// 平坦区域保留原值；边框一圈直接复制原值
func BlendAlpha(original, refined *Mask, thresh float64) (*Mask, error) {
	if err := original.valid(); err != nil {
		return nil, err
	}
	if err := sameSize("blend alpha", original.W, original.H, refined.W, refined.H); err != nil {
		return nil, err
	}
	w, h := original.W, original.H
	out := original.Clone()
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum, sum2 float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := float64(original.Pix[(y+dy)*w+x+dx])
					sum += v
					sum2 += v * v
				}
			}
			mean := sum / 9
			variance := sum2/9 - mean*mean
			i := y*w + x
			if variance*100 > thresh {
				out.Pix[i] = refined.Pix[i]
			}
		}
	}
	return out, nil
}
