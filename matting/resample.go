package matting

import "math"

// ResizeBilinear 双线性缩放单通道浮点场，四角严格对齐。
// 目标尺寸为 1 时取源中心线而不是除零。
func ResizeBilinear(src *Field, dstW, dstH int) (*Field, error) {
	if err := src.valid(); err != nil {
		return nil, err
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, ErrEmptyField
	}

	xs := axisMap(src.W, dstW)
	ys := axisMap(src.H, dstH)

	out := NewField(dstW, dstH)
	for y := 0; y < dstH; y++ {
		gy := ys[y]
		y0 := int(math.Floor(gy))
		y1 := min(y0+1, src.H-1)
		wy := gy - float64(y0)
		row0 := src.Pix[y0*src.W : (y0+1)*src.W]
		row1 := src.Pix[y1*src.W : (y1+1)*src.W]
		for x := 0; x < dstW; x++ {
			gx := xs[x]
			x0 := int(math.Floor(gx))
			x1 := min(x0+1, src.W-1)
			wx := gx - float64(x0)
			top := (1-wx)*row0[x0] + wx*row0[x1]
			bottom := (1-wx)*row1[x0] + wx*row1[x1]
			out.Pix[y*dstW+x] = (1-wy)*top + wy*bottom
		}
	}
	return out, nil
}

// ResizeMask 8 位掩码的双线性缩放
func ResizeMask(src *Mask, dstW, dstH int) (*Mask, error) {
	if err := src.valid(); err != nil {
		return nil, err
	}
	if src.W == dstW && src.H == dstH {
		return src.Clone(), nil
	}
	f, err := ResizeBilinear(src.Float(), dstW, dstH)
	if err != nil {
		return nil, err
	}
	return f.Mask(), nil
}

// axisMap 目标坐标 -> 源连续坐标，结果截断在 [0, srcDim-1]
func axisMap(srcDim, dstDim int) []float64 {
	out := make([]float64, dstDim)
	if dstDim == 1 {
		out[0] = float64(srcDim-1) / 2
		return out
	}
	scale := float64(srcDim-1) / float64(dstDim-1)
	for i := range out {
		v := float64(i) * scale
		if v > float64(srcDim-1) {
			v = float64(srcDim - 1)
		}
		out[i] = v
	}
	return out
}
