package matting

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomMask(rng *rand.Rand, w, h int, binary bool) *Mask {
	m := NewMask(w, h)
	for i := range m.Pix {
		if binary {
			if rng.Intn(3) == 0 {
				m.Pix[i] = 255
			}
			continue
		}
		m.Pix[i] = uint8(rng.Intn(256))
	}
	return m
}

// windowExtreme 逐像素扫描裁剪后的方形窗口
func windowExtreme(m *Mask, radius int, dilate bool) *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			v := m.Pix[y*m.W+x]
			for sy := max(0, y-radius); sy <= min(m.H-1, y+radius); sy++ {
				for sx := max(0, x-radius); sx <= min(m.W-1, x+radius); sx++ {
					c := m.Pix[sy*m.W+sx]
					if (dilate && c > v) || (!dilate && c < v) {
						v = c
					}
				}
			}
			out.Pix[y*m.W+x] = v
		}
	}
	return out
}

// l1Distances 暴力计算到最近 target 的曼哈顿距离
func l1Distances(target []bool, w, h int) []int {
	dist := make([]int, w*h)
	for i := range dist {
		dist[i] = distInf
		x, y := i%w, i/w
		for j, t := range target {
			if t {
				dist[i] = min(dist[i], abs(x-j%w)+abs(y-j/w))
			}
		}
	}
	return dist
}

var windowSizes = [][2]int{{1, 1}, {1, 9}, {9, 1}, {7, 5}, {16, 11}}

func TestMorphology_MatchesClippedWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range windowSizes {
		for radius := 1; radius <= 3; radius++ {
			w, h := size[0], size[1]
			t.Run(fmt.Sprintf("%dx%d_r%d", w, h, radius), func(t *testing.T) {
				m := randomMask(rng, w, h, false)

				eroded, err := Erode(m, radius)
				require.NoError(t, err)
				require.Equal(t, windowExtreme(m, radius, false).Pix, eroded.Pix)

				dilated, err := Dilate(m, radius)
				require.NoError(t, err)
				require.Equal(t, windowExtreme(m, radius, true).Pix, dilated.Pix)

				opened, err := MorphOpen(m, radius)
				require.NoError(t, err)
				require.Equal(t, windowExtreme(windowExtreme(m, radius, false), radius, true).Pix, opened.Pix)

				closed, err := MorphClose(m, radius)
				require.NoError(t, err)
				require.Equal(t, windowExtreme(windowExtreme(m, radius, true), radius, false).Pix, closed.Pix)
			})
		}
	}
}

func TestMorphology_DoesNotMutateInput(t *testing.T) {
	m := randomMask(rand.New(rand.NewSource(3)), 6, 6, true)
	before := append([]uint8(nil), m.Pix...)
	_, err := MorphCleanup(m, 1)
	require.NoError(t, err)
	require.Equal(t, before, m.Pix)
}

func TestDistanceTo_MatchesL1(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, size := range windowSizes {
		w, h := size[0], size[1]
		t.Run(fmt.Sprintf("%dx%d", w, h), func(t *testing.T) {
			target := binarize(randomMask(rng, w, h, true))

			got, err := distanceTo(target, w, h)
			require.NoError(t, err)
			require.Equal(t, l1Distances(target, w, h), got)
		})
	}
}

func TestDistanceTo_NoTarget(t *testing.T) {
	got, err := distanceTo(make([]bool, 6), 3, 2)
	require.NoError(t, err)
	require.Equal(t, []int{distInf, distInf, distInf, distInf, distInf, distInf}, got)
}
