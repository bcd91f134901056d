//go:build gocv
// +build gocv

package service

import (
	"image"
	"runtime"

	"github.com/TIANLI0/MatteKit/matting"
	"github.com/TIANLI0/MatteKit/model"
	"github.com/TIANLI0/MatteKit/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// BoundingBox 二值化后取所有外轮廓外接矩形的并集，没有前景时返回零值
func (ms *MaskStats) BoundingBox(alpha *matting.Mask) model.BBox {
	if len(alpha.Pix) == 0 {
		return model.BBox{}
	}
	bin := make([]byte, len(alpha.Pix))
	for i, a := range alpha.Pix {
		if a > bboxCutoff {
			bin[i] = 255
		}
	}

	mask, err := gocv.NewMatFromBytes(alpha.H, alpha.W, gocv.MatTypeCV8UC1, bin)
	if err != nil {
		utils.Logger.Warn("failed to build mask mat", zap.Error(err))
		return model.BBox{}
	}
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	runtime.KeepAlive(bin)

	if contours.Size() == 0 {
		return model.BBox{}
	}

	var union image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		r := gocv.BoundingRect(contours.At(i))
		if i == 0 {
			union = r
		} else {
			union = union.Union(r)
		}
	}

	return model.BBox{
		X:      union.Min.X,
		Y:      union.Min.Y,
		Width:  union.Dx(),
		Height: union.Dy(),
	}
}
