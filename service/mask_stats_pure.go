//go:build !gocv
// +build !gocv

package service

import (
	"github.com/TIANLI0/MatteKit/matting"
	"github.com/TIANLI0/MatteKit/model"
)

// BoundingBox 前景像素的外接矩形，没有前景时返回零值
func (ms *MaskStats) BoundingBox(alpha *matting.Mask) model.BBox {
	minX, minY := alpha.W, alpha.H
	maxX, maxY := -1, -1
	for y := 0; y < alpha.H; y++ {
		row := alpha.Pix[y*alpha.W : (y+1)*alpha.W]
		for x, a := range row {
			if a <= bboxCutoff {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return model.BBox{}
	}
	return model.BBox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
}
