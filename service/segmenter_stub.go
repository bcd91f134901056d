//go:build !gocv
// +build !gocv

package service

import (
	"context"
	"fmt"

	"github.com/TIANLI0/MatteKit/matting"
)

// GoCVSegmenter 未启用 gocv 构建标签时的占位实现，只能使用调用方提供的掩码
type GoCVSegmenter struct {
	size int
}

// NewGoCVSegmenter 创建占位分割器（不加载模型）
func NewGoCVSegmenter(_ string, size int) (*GoCVSegmenter, error) {
	if !matting.ValidInputSize(size) {
		return nil, fmt.Errorf("unsupported model input size %d", size)
	}
	return &GoCVSegmenter{size: size}, nil
}

// Segment 始终返回 ErrInferenceUnavailable
func (s *GoCVSegmenter) Segment(context.Context, matting.Tensor) ([]float32, error) {
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", ErrInferenceUnavailable)
}

func (s *GoCVSegmenter) Close() error {
	return nil
}
