package matting

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// Composite 写入校色后的 RGB 与最终 alpha。
// backing 非空时先用纯色铺底，再把结果以 Over 叠加上去，输出不透明图像
func Composite(img *image.NRGBA, alpha *Mask, backing *color.NRGBA) (*image.NRGBA, error) {
	if err := alpha.valid(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if err := sameSize("composite", alpha.W, alpha.H, b.Dx(), b.Dy()); err != nil {
		return nil, err
	}

	cut := cloneNRGBA(img)
	for y := 0; y < alpha.H; y++ {
		row := cut.Pix[y*cut.Stride:]
		for x := 0; x < alpha.W; x++ {
			row[x*4+3] = alpha.Pix[y*alpha.W+x]
		}
	}
	if backing == nil {
		return cut, nil
	}

	canvas := image.NewNRGBA(cut.Bounds())
	bg := *backing
	bg.A = 255
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), cut, image.Point{}, draw.Over)
	return canvas, nil
}

// AlphaImage 把 alpha 掩码包装成灰度图，便于单独导出
func AlphaImage(alpha *Mask) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, alpha.W, alpha.H))
	copy(g.Pix, alpha.Pix)
	return g
}

// ParseBackingColor 解析 #rrggbb 形式的铺底色，空串表示透明
func ParseBackingColor(s string) (*color.NRGBA, error) {
	if s == "" {
		return nil, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("matting: backing color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return &color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
