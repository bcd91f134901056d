package matting

// integralTable (w+1)×(h+1) 前缀和表，首行首列为 0
type integralTable struct {
	stride int
	sum    []float64
}

func newIntegralTable(src []float64, w, h int) *integralTable {
	stride := w + 1
	t := &integralTable{stride: stride, sum: make([]float64, stride*(h+1))}
	for y := 0; y < h; y++ {
		var rowSum float64
		row := src[y*w : (y+1)*w]
		for x, v := range row {
			rowSum += v
			t.sum[(y+1)*stride+x+1] = t.sum[y*stride+x+1] + rowSum
		}
	}
	return t
}

// rect 闭区间 [x0,x1]×[y0,y1] 的和
func (t *integralTable) rect(x0, y0, x1, y1 int) float64 {
	s := t.stride
	return t.sum[(y1+1)*s+x1+1] - t.sum[y0*s+x1+1] - t.sum[(y1+1)*s+x0] + t.sum[y0*s+x0]
}

// BoxFilter 基于积分图的均值滤波，每像素 O(1)。
// 窗口在边界处裁剪（面积变小，不补零）；radius<=0 时原样返回副本。
func BoxFilter(src *Field, radius int) (*Field, error) {
	if err := src.valid(); err != nil {
		return nil, err
	}
	out := NewField(src.W, src.H)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out, nil
	}
	boxMean(src.Pix, out.Pix, src.W, src.H, radius)
	return out, nil
}

func boxMean(src, dst []float64, w, h, r int) {
	t := newIntegralTable(src, w, h)
	for y := 0; y < h; y++ {
		y0 := max(0, y-r)
		y1 := min(h-1, y+r)
		for x := 0; x < w; x++ {
			x0 := max(0, x-r)
			x1 := min(w-1, x+r)
			area := float64((y1 - y0 + 1) * (x1 - x0 + 1))
			dst[y*w+x] = t.rect(x0, y0, x1, y1) / area
		}
	}
}
