package service

import (
	"context"
	"errors"

	"github.com/TIANLI0/MatteKit/matting"
)

// ErrInferenceUnavailable 推理引擎不可用或输出不可用，由调用方决定重试或改用其他掩码来源
var ErrInferenceUnavailable = errors.New("inference unavailable")

// Segmenter 推理边界：输入 1×3×S×S 归一化张量，输出 S×S 单通道原始分数
type Segmenter interface {
	Segment(ctx context.Context, input matting.Tensor) ([]float32, error)
	Close() error
}
