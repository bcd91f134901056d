//go:build !gocv

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TIANLI0/MatteKit/matting"
)

func TestGoCVSegmenterStub(t *testing.T) {
	_, err := NewGoCVSegmenter("model.onnx", 256)
	require.Error(t, err)

	seg, err := NewGoCVSegmenter("model.onnx", matting.InputSizeDefault)
	require.NoError(t, err)
	defer seg.Close()

	_, err = seg.Segment(context.Background(), matting.Tensor{})
	require.ErrorIs(t, err, ErrInferenceUnavailable)
}
