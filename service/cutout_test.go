package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TIANLI0/MatteKit/matting"
	"github.com/TIANLI0/MatteKit/model"
)

func newTestService(t *testing.T, seg Segmenter) (*CutoutService, *MemoryCache) {
	t.Helper()
	cache, err := NewMemoryCache(time.Hour, "")
	require.NoError(t, err)
	svc, err := NewCutoutService(testConfig(), seg, cache)
	require.NoError(t, err)
	return svc, cache
}

func TestCutoutService_ProcessWithModel(t *testing.T) {
	seg := &fakeSegmenter{}
	svc, cache := newTestService(t, seg)
	ctx := context.Background()
	req := CutoutRequest{Image: scenePNG(t, 40, 30), Options: svc.DefaultOptions()}

	result, cached, err := svc.Process(ctx, req)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, model.SourceModel, result.Source)
	require.Equal(t, 40, result.Width)
	require.Equal(t, 30, result.Height)
	require.InDelta(t, 0.5, result.Coverage, 0.15)
	require.Equal(t, 0, result.BoundingBox.Y)
	require.Equal(t, 30, result.BoundingBox.Height)
	require.Equal(t, 40, result.BoundingBox.X+result.BoundingBox.Width)
	require.Equal(t, CacheKey(result.MD5, nil, req.Options), result.Key)

	raw, err := base64.StdEncoding.DecodeString(result.Image)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 40, img.Bounds().Dx())

	again, cached, err := svc.Process(ctx, req)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, result, again)
	require.Equal(t, 1, seg.Calls())
	require.Equal(t, 1, cache.Len())

	found, err := svc.Lookup(ctx, result.Key)
	require.NoError(t, err)
	require.Equal(t, result, found)
}

func TestCutoutService_ProcessWithSuppliedMask(t *testing.T) {
	seg := &fakeSegmenter{err: errors.New("must not be called")}
	svc, _ := newTestService(t, seg)

	result, _, err := svc.Process(context.Background(), CutoutRequest{
		Image:   scenePNG(t, 40, 30),
		Mask:    maskPNG(t, 13, 7),
		Options: svc.DefaultOptions(),
	})
	require.NoError(t, err)
	require.Equal(t, model.SourceMask, result.Source)
	require.Zero(t, seg.Calls())
	require.InDelta(t, 0.5, result.Coverage, 0.2)
}

func TestCutoutService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("inference failure", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeSegmenter{err: errors.New("onnx exploded")})
		_, _, err := svc.Process(ctx, CutoutRequest{Image: scenePNG(t, 8, 8), Options: svc.DefaultOptions()})
		require.ErrorIs(t, err, ErrInferenceUnavailable)
	})

	t.Run("no segmenter", func(t *testing.T) {
		svc, _ := newTestService(t, nil)
		_, _, err := svc.Process(ctx, CutoutRequest{Image: scenePNG(t, 8, 8), Options: svc.DefaultOptions()})
		require.ErrorIs(t, err, ErrInferenceUnavailable)
	})

	t.Run("invalid image", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeSegmenter{})
		_, _, err := svc.Process(ctx, CutoutRequest{Image: []byte("not an image"), Options: svc.DefaultOptions()})
		require.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("invalid mask", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeSegmenter{})
		_, _, err := svc.Process(ctx, CutoutRequest{
			Image:   scenePNG(t, 8, 8),
			Mask:    []byte("garbage"),
			Options: svc.DefaultOptions(),
		})
		require.ErrorIs(t, err, ErrInvalidMask)
	})

	t.Run("invalid options", func(t *testing.T) {
		svc, _ := newTestService(t, &fakeSegmenter{})
		opts := svc.DefaultOptions()
		opts.GuidedEps = -1
		_, _, err := svc.Process(ctx, CutoutRequest{Image: scenePNG(t, 8, 8), Options: opts})
		require.ErrorIs(t, err, matting.ErrInvalidOptions)
	})
}

func TestCutoutService_QueueFull(t *testing.T) {
	seg := &fakeSegmenter{block: make(chan struct{})}
	cfg := testConfig()
	cfg.Model.MaxConcurrent = 1
	svc, err := NewCutoutService(cfg, seg, nil)
	require.NoError(t, err)

	first := scenePNG(t, 8, 8)
	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Process(context.Background(), CutoutRequest{Image: first, Options: svc.DefaultOptions()})
		done <- err
	}()
	require.Eventually(t, func() bool { return seg.Calls() == 1 }, time.Second, 5*time.Millisecond)

	_, _, err = svc.Process(context.Background(), CutoutRequest{Image: scenePNG(t, 9, 9), Options: svc.DefaultOptions()})
	require.ErrorIs(t, err, ErrQueueFull)

	close(seg.block)
	require.NoError(t, <-done)
}

func TestCutoutService_LimitsLongestSide(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxSide = 40
	svc, err := NewCutoutService(cfg, &fakeSegmenter{}, nil)
	require.NoError(t, err)

	result, _, err := svc.Process(context.Background(), CutoutRequest{Image: scenePNG(t, 100, 50), Options: svc.DefaultOptions()})
	require.NoError(t, err)
	require.Equal(t, 40, result.Width)
	require.Equal(t, 20, result.Height)
}

func TestCacheKey(t *testing.T) {
	opts := matting.DefaultOptions()
	base := CacheKey("abc", nil, opts)
	require.Equal(t, base, CacheKey("abc", nil, opts))
	require.NotEqual(t, base, CacheKey("abc", []byte("mask"), opts))

	opts.UseTrimap = true
	require.NotEqual(t, base, CacheKey("abc", nil, opts))
	require.Contains(t, base, "abc-")
}

func TestNewCutoutService_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Model.InputSize = 512
	_, err := NewCutoutService(cfg, &fakeSegmenter{}, nil)
	require.Error(t, err)
}
