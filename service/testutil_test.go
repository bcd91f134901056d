package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TIANLI0/MatteKit/config"
	"github.com/TIANLI0/MatteKit/matting"
)

// fakeSegmenter 右半边输出高分，其余低分
type fakeSegmenter struct {
	mu    sync.Mutex
	calls int
	err   error
	block chan struct{}
}

func (f *fakeSegmenter) Segment(ctx context.Context, input matting.Tensor) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float32, input.Width*input.Height)
	for y := 0; y < input.Height; y++ {
		for x := 0; x < input.Width; x++ {
			if x >= input.Width/2 {
				out[y*input.Width+x] = 4
			} else {
				out[y*input.Width+x] = -4
			}
		}
	}
	return out, nil
}

func (f *fakeSegmenter) Close() error { return nil }

func (f *fakeSegmenter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// scenePNG 左暗右亮的测试图片
func scenePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 30, G: 40, B: 50, A: 255}
			if x >= w/2 {
				c = color.NRGBA{R: 230, G: 210, B: 190, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// maskPNG 右半为白的灰度掩码
func maskPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Model.MaxConcurrent = 2
	cfg.Model.QueueTimeout = 0
	return cfg
}
