//go:build gocv
// +build gocv

package matting

import (
	"fmt"
	"image"
	"runtime"

	"gocv.io/x/gocv"
)

var morphTypes = map[morphOp]gocv.MorphType{
	opErode:  gocv.MorphErode,
	opDilate: gocv.MorphDilate,
	opOpen:   gocv.MorphOpen,
	opClose:  gocv.MorphClose,
}

// morphologyEx 默认常量边界在腐蚀时取最大值、膨胀时取最小值，等价于窗口在边界裁剪
func morphologyEx(alpha *Mask, radius int, op morphOp) (*Mask, error) {
	typ, ok := morphTypes[op]
	if !ok {
		return nil, fmt.Errorf("morphology: unsupported op %v", op)
	}

	src, err := maskToMat(alpha)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	size := 2*radius + 1
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: size, Y: size})
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	if err := gocv.MorphologyEx(src, &dst, typ, kernel); err != nil {
		return nil, fmt.Errorf("morphology %v: %w", op, err)
	}
	runtime.KeepAlive(alpha.Pix)

	return matToMask(dst)
}
