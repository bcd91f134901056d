//go:build gocv
// +build gocv

package matting

import (
	"fmt"

	"gocv.io/x/gocv"
)

// maskToMat 单通道 8 位 Mat，与 m.Pix 共享内存，调用方需保证 m 存活到 Mat 用完
func maskToMat(m *Mask) (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(m.H, m.W, gocv.MatTypeCV8UC1, m.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("mask to mat: %w", err)
	}
	return mat, nil
}

// matToMask 拷贝 Mat 数据为新的 Mask
func matToMask(mat gocv.Mat) (*Mask, error) {
	w, h := mat.Cols(), mat.Rows()
	if mat.Empty() || mat.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("mat to mask: unexpected mat %dx%d type %v", w, h, mat.Type())
	}
	return MaskFromBytes(mat.ToBytes(), w, h)
}
