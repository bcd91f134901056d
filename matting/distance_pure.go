//go:build !gocv
// +build !gocv

package matting

// distanceTo 多源距离变换：每个像素到最近 target 像素的距离。
// 两遍扫描（左上→右下、右下→左上）传播 min(邻居+1)，4 邻域，结果即 L1 距离。
func distanceTo(target []bool, w, h int) ([]int, error) {
	if dist, ok := unreachable(target); ok {
		return dist, nil
	}
	dist := make([]int, w*h)
	for i, t := range target {
		if !t {
			dist[i] = distInf
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if x > 0 && dist[i-1]+1 < dist[i] {
				dist[i] = dist[i-1] + 1
			}
			if y > 0 && dist[i-w]+1 < dist[i] {
				dist[i] = dist[i-w] + 1
			}
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			if x < w-1 && dist[i+1]+1 < dist[i] {
				dist[i] = dist[i+1] + 1
			}
			if y < h-1 && dist[i+w]+1 < dist[i] {
				dist[i] = dist[i+w] + 1
			}
		}
	}
	return dist, nil
}
