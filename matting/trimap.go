package matting

// Trimap 取值
const (
	TrimapBackground uint8 = 0
	TrimapUnknown    uint8 = 128
	TrimapForeground uint8 = 255
)

// DefaultTrimapBand 未知带默认半宽（像素）
const DefaultTrimapBand = 4

// GenerateTrimap 以 127 二值化后，距对侧不超过 band 的像素标记为未知
func GenerateTrimap(alpha *Mask, band int) (*Mask, error) {
	if err := alpha.valid(); err != nil {
		return nil, err
	}
	if band < 0 {
		band = 0
	}
	fg := binarize(alpha)
	toFg, err := distanceTo(fg, alpha.W, alpha.H)
	if err != nil {
		return nil, err
	}
	toBg, err := distanceTo(invert(fg), alpha.W, alpha.H)
	if err != nil {
		return nil, err
	}

	out := NewMask(alpha.W, alpha.H)
	for i, isFg := range fg {
		switch {
		case isFg && toBg[i] <= band:
			out.Pix[i] = TrimapUnknown
		case isFg:
			out.Pix[i] = TrimapForeground
		case toFg[i] <= band:
			out.Pix[i] = TrimapUnknown
		default:
			out.Pix[i] = TrimapBackground
		}
	}
	return out, nil
}

// ClampToTrimap 确定前景置 255、确定背景置 0，未知带保留软 alpha
func ClampToTrimap(alpha, trimap *Mask) (*Mask, error) {
	if err := sameSize("trimap clamp", alpha.W, alpha.H, trimap.W, trimap.H); err != nil {
		return nil, err
	}
	out := alpha.Clone()
	for i, t := range trimap.Pix {
		switch t {
		case TrimapForeground:
			out.Pix[i] = 255
		case TrimapBackground:
			out.Pix[i] = 0
		}
	}
	return out, nil
}
