package matting

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// contourCutoff alpha 不超过该值且 8 邻域内有更高值的像素视为轮廓
	contourCutoff = 200
	// backgroundCutoff 采样背景色时只取 alpha 不超过该值的像素
	backgroundCutoff = 220

	DefaultDespillSampleRadius = 3
	DefaultDespillStrength     = 0.6
)

// DespillOptions 去溢色参数
type DespillOptions struct {
	SampleRadius int
	// Strength 去饱和系数 k，实际去饱和量为 (1-alpha/255)·k
	Strength float64
	// HueShift 色相向背景补色偏移的比例，0 不偏移，1 完全转到补色
	HueShift float64
}

// DefaultDespillOptions 默认只去饱和，不偏移色相
func DefaultDespillOptions() DespillOptions {
	return DespillOptions{
		SampleRadius: DefaultDespillSampleRadius,
		Strength:     DefaultDespillStrength,
	}
}

// Decontaminate 对前景边缘的半透明像素去除背景溢色，返回新图像，输入不变
func Decontaminate(img *image.NRGBA, alpha *Mask, opts DespillOptions) (*image.NRGBA, error) {
	out, _, err := decontaminate(img, alpha, opts)
	return out, err
}

func decontaminate(img *image.NRGBA, alpha *Mask, opts DespillOptions) (*image.NRGBA, int, error) {
	if err := alpha.valid(); err != nil {
		return nil, 0, err
	}
	b := img.Bounds()
	if err := sameSize("despill", alpha.W, alpha.H, b.Dx(), b.Dy()); err != nil {
		return nil, 0, err
	}
	w, h := alpha.W, alpha.H
	src := toOrigin(img)
	out := cloneNRGBA(img)

	r := max(0, opts.SampleRadius)
	strength := math.Max(0, math.Min(1, opts.Strength))
	shift := math.Max(0, math.Min(1, opts.HueShift))

	contours := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if !isContour(alpha, x, y) {
				continue
			}
			contours++

			var sr, sg, sb float64
			cnt := 0
			for sy := max(0, y-r); sy <= min(h-1, y+r); sy++ {
				for sx := max(0, x-r); sx <= min(w-1, x+r); sx++ {
					if alpha.Pix[sy*w+sx] > backgroundCutoff {
						continue
					}
					p := src.Pix[sy*src.Stride+sx*4:]
					sr += float64(p[0])
					sg += float64(p[1])
					sb += float64(p[2])
					cnt++
				}
			}
			if cnt == 0 {
				continue
			}
			n := float64(cnt) * 255
			bg := colorful.Color{R: sr / n, G: sg / n, B: sb / n}

			p := out.Pix[y*out.Stride+x*4:]
			fg := colorful.Color{R: float64(p[0]) / 255, G: float64(p[1]) / 255, B: float64(p[2]) / 255}
			hue, sat, val := fg.Hsv()

			desat := math.Min(strength, (1-float64(alpha.Pix[i])/255)*strength)
			sat = math.Max(0, sat*(1-desat))
			if shift > 0 {
				bgHue, _, _ := bg.Hsv()
				comp := math.Mod(bgHue+180, 360)
				hue = math.Mod(hue+shift*angleDiff(comp, hue)+360, 360)
			}
			p[0], p[1], p[2] = colorful.Hsv(hue, sat, val).Clamped().RGB255()
		}
	}
	return out, contours, nil
}

// isContour 调用方保证 (x,y) 不在边框上
func isContour(alpha *Mask, x, y int) bool {
	w := alpha.W
	if alpha.Pix[y*w+x] > contourCutoff {
		return false
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && alpha.Pix[(y+dy)*w+x+dx] > contourCutoff {
				return true
			}
		}
	}
	return false
}

// angleDiff a-b 规约到 [-180,180]
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// toOrigin 保证图像原点在 (0,0)，已满足时原样返回
func toOrigin(img *image.NRGBA) *image.NRGBA {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	return cloneNRGBA(img)
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()*4], img.Pix[y*img.Stride:y*img.Stride+b.Dx()*4])
	}
	return out
}
