package service

import (
	"github.com/TIANLI0/MatteKit/matting"
	"github.com/montanaflynn/stats"
)

// bboxCutoff alpha 超过该值的像素计入主体边界框
const bboxCutoff = 127

// MaskStats 负责统计最终 alpha 的边界框与覆盖率
type MaskStats struct{}

func NewMaskStats() *MaskStats {
	return &MaskStats{}
}

// Coverage 平均不透明度，范围 [0,1]
func (ms *MaskStats) Coverage(alpha *matting.Mask) float64 {
	vals := make(stats.Float64Data, len(alpha.Pix))
	for i, a := range alpha.Pix {
		vals[i] = float64(a) / 255
	}
	mean, err := stats.Mean(vals)
	if err != nil {
		return 0
	}
	return mean
}
