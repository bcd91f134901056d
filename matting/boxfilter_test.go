package matting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func constField(w, h int, v float64) *Field {
	f := NewField(w, h)
	for i := range f.Pix {
		f.Pix[i] = v
	}
	return f
}

func TestBoxFilter_ConstantField(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 5}, {7, 4}, {16, 9}}
	for _, sz := range sizes {
		for _, r := range []int{0, 1, 3, 20} {
			out, err := BoxFilter(constField(sz[0], sz[1], 42.5), r)
			require.NoError(t, err)
			for i, v := range out.Pix {
				require.InDelta(t, 42.5, v, 1e-9, "size %v radius %d pixel %d", sz, r, i)
			}
		}
	}
}

func TestBoxFilter_ZeroRadiusIsCopy(t *testing.T) {
	src := &Field{W: 3, H: 1, Pix: []float64{1, 5, 9}}
	out, err := BoxFilter(src, 0)
	require.NoError(t, err)
	require.Equal(t, src.Pix, out.Pix)

	out.Pix[0] = 100
	require.Equal(t, 1.0, src.Pix[0])
}

func TestBoxFilter_BorderWindowsShrink(t *testing.T) {
	src := &Field{W: 3, H: 1, Pix: []float64{0, 3, 6}}
	out, err := BoxFilter(src, 1)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1.5, 3, 4.5}, out.Pix, 1e-9)
}

func TestBoxFilter_InvalidInput(t *testing.T) {
	_, err := BoxFilter(&Field{W: 0, H: 3}, 1)
	require.ErrorIs(t, err, ErrEmptyField)

	_, err = BoxFilter(&Field{W: 2, H: 2, Pix: make([]float64, 3)}, 1)
	var dimErr *DimensionError
	require.True(t, errors.As(err, &dimErr))
	require.Equal(t, 4, dimErr.Expect)
}
