//go:build !gocv
// +build !gocv

package matting

import "fmt"

func morphologyEx(alpha *Mask, radius int, op morphOp) (*Mask, error) {
	erode := func(m *Mask) *Mask { return morph(m, radius, func(a, b uint8) bool { return b < a }) }
	dilate := func(m *Mask) *Mask { return morph(m, radius, func(a, b uint8) bool { return b > a }) }

	switch op {
	case opErode:
		return erode(alpha), nil
	case opDilate:
		return dilate(alpha), nil
	case opOpen:
		return dilate(erode(alpha)), nil
	case opClose:
		return erode(dilate(alpha)), nil
	}
	return nil, fmt.Errorf("morphology: unsupported op %v", op)
}

// morph 可分离实现：方形窗口的 min/max 等价于先行后列
func morph(alpha *Mask, radius int, better func(cur, cand uint8) bool) *Mask {
	w, h := alpha.W, alpha.H
	tmp := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := alpha.Pix[y*w+max(0, x-radius)]
			for sx := max(0, x-radius) + 1; sx <= min(w-1, x+radius); sx++ {
				if c := alpha.Pix[y*w+sx]; better(v, c) {
					v = c
				}
			}
			tmp.Pix[y*w+x] = v
		}
	}
	out := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := tmp.Pix[max(0, y-radius)*w+x]
			for sy := max(0, y-radius) + 1; sy <= min(h-1, y+radius); sy++ {
				if c := tmp.Pix[sy*w+x]; better(v, c) {
					v = c
				}
			}
			out.Pix[y*w+x] = v
		}
	}
	return out
}
