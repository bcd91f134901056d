//go:build gocv
// +build gocv

package matting

import (
	"fmt"
	"math"
	"runtime"

	"gocv.io/x/gocv"
)

// distanceTo 多源 L1 距离变换。OpenCV 计算到最近零像素的距离，
// 所以 target 像素写 0、其余写 255；DistL1 + 3x3 掩码与两遍扫描结果一致。
func distanceTo(target []bool, w, h int) ([]int, error) {
	if dist, ok := unreachable(target); ok {
		return dist, nil
	}
	src := make([]byte, w*h)
	for i, t := range target {
		if !t {
			src[i] = 255
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, src)
	if err != nil {
		return nil, fmt.Errorf("distance transform: %w", err)
	}
	defer mat.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	labels := gocv.NewMat()
	defer labels.Close()

	gocv.DistanceTransform(mat, &dst, &labels, gocv.DistL1, gocv.DistanceMask3, gocv.DistanceLabelCComp)
	runtime.KeepAlive(src)
	if dst.Empty() || dst.Rows() != h || dst.Cols() != w {
		return nil, fmt.Errorf("distance transform: unexpected output %dx%d", dst.Cols(), dst.Rows())
	}

	data, err := dst.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("distance transform: %w", err)
	}
	dist := make([]int, w*h)
	for i, v := range data[:w*h] {
		dist[i] = int(math.Round(float64(v)))
	}
	return dist, nil
}
