//go:build gocv
// +build gocv

package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/TIANLI0/MatteKit/matting"
	"gocv.io/x/gocv"
)

// GoCVSegmenter 基于 OpenCV dnn 运行 ONNX 显著性分割模型（U²-Net 系列）
type GoCVSegmenter struct {
	mu   sync.Mutex
	net  gocv.Net
	size int
}

// NewGoCVSegmenter 加载模型，size 为模型输入边长
func NewGoCVSegmenter(modelPath string, size int) (*GoCVSegmenter, error) {
	if !matting.ValidInputSize(size) {
		return nil, fmt.Errorf("unsupported model input size %d", size)
	}
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to load model %s", ErrInferenceUnavailable, modelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}
	return &GoCVSegmenter{net: net, size: size}, nil
}

// Segment 同一个 Net 不能并发 Forward，内部串行
func (s *GoCVSegmenter) Segment(ctx context.Context, input matting.Tensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Height != s.size || input.Width != s.size || input.Channels != 3 {
		return nil, &matting.DimensionError{
			Stage: "segment", WantW: s.size, WantH: s.size, GotW: input.Width, GotH: input.Height,
		}
	}

	buf := make([]byte, len(input.Data)*4)
	for i, v := range input.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	blob, err := gocv.NewMatWithSizesFromBytes(input.Dims(), gocv.MatTypeCV32F, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: build blob: %v", ErrInferenceUnavailable, err)
	}
	defer blob.Close()

	s.mu.Lock()
	s.net.SetInput(blob, "")
	out := s.net.Forward("")
	s.mu.Unlock()
	runtime.KeepAlive(buf)
	defer out.Close()

	if out.Empty() || out.Total() != s.size*s.size {
		return nil, fmt.Errorf("%w: unexpected output size %d", ErrInferenceUnavailable, out.Total())
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrInferenceUnavailable, err)
	}
	result := make([]float32, len(data))
	copy(result, data)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GoCVSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}
