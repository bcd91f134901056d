package matting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResizeBilinear_SameSizeIsIdentity(t *testing.T) {
	src := NewField(5, 4)
	for i := range src.Pix {
		src.Pix[i] = float64(i*37%255) + 0.25
	}
	out, err := ResizeBilinear(src, 5, 4)
	require.NoError(t, err)
	require.InDeltaSlice(t, src.Pix, out.Pix, 1e-9)
}

func TestResizeBilinear_CornersAlign(t *testing.T) {
	src := &Field{W: 2, H: 2, Pix: []float64{0, 10, 20, 30}}
	out, err := ResizeBilinear(src, 3, 3)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{
		0, 5, 10,
		10, 15, 20,
		20, 25, 30,
	}, out.Pix, 1e-9)
}

func TestResizeBilinear_SingleDestinationPixel(t *testing.T) {
	src := NewField(3, 3)
	src.Pix[4] = 9
	out, err := ResizeBilinear(src, 1, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{9}, out.Pix)
}

func TestResizeBilinear_Errors(t *testing.T) {
	_, err := ResizeBilinear(NewField(2, 2), 0, 3)
	require.ErrorIs(t, err, ErrEmptyField)

	_, err = ResizeBilinear(&Field{W: 3, H: 3, Pix: make([]float64, 4)}, 2, 2)
	var dimErr *DimensionError
	require.True(t, errors.As(err, &dimErr))
}

func TestResizeMask(t *testing.T) {
	src := &Mask{W: 2, H: 1, Pix: []uint8{0, 255}}
	out, err := ResizeMask(src, 3, 1)
	require.NoError(t, err)
	require.Equal(t, []uint8{0, 128, 255}, out.Pix)

	same, err := ResizeMask(src, 2, 1)
	require.NoError(t, err)
	require.Equal(t, src.Pix, same.Pix)
	same.Pix[0] = 7
	require.Equal(t, uint8(0), src.Pix[0])
}
