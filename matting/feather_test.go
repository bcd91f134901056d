package matting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAntiAliasAlpha_Ramp(t *testing.T) {
	m := &Mask{W: 10, H: 1, Pix: []uint8{255, 255, 200, 0, 0, 0, 0, 0, 0, 0}}
	out, err := AntiAliasAlpha(m, 3)
	require.NoError(t, err)
	require.Equal(t, []uint8{255, 255, 255, 191, 128, 64, 0, 0, 0, 0}, out.Pix)
}

func TestAntiAliasAlpha_MonotoneInDistance(t *testing.T) {
	const w, h, maxDist = 15, 15, 3
	m := NewMask(w, h)
	for y := 6; y < 9; y++ {
		for x := 5; x < 10; x++ {
			m.Pix[y*w+x] = 255
		}
	}
	out, err := AntiAliasAlpha(m, maxDist)
	require.NoError(t, err)

	dist := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := w + h
			for yy := 0; yy < h; yy++ {
				for xx := 0; xx < w; xx++ {
					if m.Pix[yy*w+xx] > 127 {
						best = min(best, abs(xx-x)+abs(yy-y))
					}
				}
			}
			dist[y*w+x] = best
		}
	}

	for i, d := range dist {
		switch {
		case d == 0:
			require.Equal(t, uint8(255), out.Pix[i])
		case d > maxDist:
			require.Equal(t, uint8(0), out.Pix[i])
		}
		for j, d2 := range dist {
			if d < d2 {
				require.GreaterOrEqual(t, out.Pix[i], out.Pix[j])
			}
		}
	}
}

func TestAdaptiveFeather(t *testing.T) {
	t.Run("flat mask gets widest feather", func(t *testing.T) {
		require.Equal(t, MaxFeatherRadius, AdaptiveFeather(&Mask{W: 8, H: 8, Pix: repeat(255, 64)}))
	})

	t.Run("crisp edge gets no feather", func(t *testing.T) {
		m := NewMask(10, 10)
		for y := 0; y < 10; y++ {
			for x := 5; x < 10; x++ {
				m.Pix[y*10+x] = 255
			}
		}
		require.Equal(t, 0, AdaptiveFeather(m))
	})

	t.Run("result stays in range", func(t *testing.T) {
		m := NewMask(12, 12)
		for i := range m.Pix {
			m.Pix[i] = uint8(i * 53 % 256)
		}
		r := AdaptiveFeather(m)
		require.GreaterOrEqual(t, r, 0)
		require.LessOrEqual(t, r, MaxFeatherRadius)
	})
}

func TestSobelMagnitude_BorderIsZero(t *testing.T) {
	m := NewMask(4, 4)
	for i := range m.Pix {
		m.Pix[i] = uint8(i * 16)
	}
	mag := SobelMagnitude(m)
	for x := 0; x < 4; x++ {
		require.Zero(t, mag.Pix[x])
		require.Zero(t, mag.Pix[12+x])
	}
	require.Greater(t, mag.Pix[5], 0.0)
}

func TestBoxBlurAlpha(t *testing.T) {
	m := &Mask{W: 3, H: 1, Pix: []uint8{0, 90, 180}}

	same, err := BoxBlurAlpha(m, 0)
	require.NoError(t, err)
	require.Equal(t, m.Pix, same.Pix)
	same.Pix[1] = 1
	require.Equal(t, uint8(90), m.Pix[1])

	out, err := BoxBlurAlpha(m, 1)
	require.NoError(t, err)
	require.Equal(t, []uint8{45, 90, 135}, out.Pix)
}
