package matting

import "math"

const distInf = math.MaxInt32 / 2

// binarize alpha > 127 视为前景
func binarize(alpha *Mask) []bool {
	out := make([]bool, len(alpha.Pix))
	for i, v := range alpha.Pix {
		out[i] = v > 127
	}
	return out
}

// unreachable 没有任何目标像素时，所有距离都是无穷大
func unreachable(target []bool) ([]int, bool) {
	for _, t := range target {
		if t {
			return nil, false
		}
	}
	dist := make([]int, len(target))
	for i := range dist {
		dist[i] = distInf
	}
	return dist, true
}

func invert(b []bool) []bool {
	out := make([]bool, len(b))
	for i, v := range b {
		out[i] = !v
	}
	return out
}
