package matting

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyField 输入尺寸为 0
var ErrEmptyField = errors.New("matting: empty field")

// DimensionError 阶段之间传递的尺寸不一致（调用方错误）
type DimensionError struct {
	Stage          string
	WantW, WantH   int
	GotW, GotH     int
	GotLen, Expect int
}

func (e *DimensionError) Error() string {
	if e.Expect != e.GotLen {
		return fmt.Sprintf("matting: %s: buffer length %d, want %d", e.Stage, e.GotLen, e.Expect)
	}
	return fmt.Sprintf("matting: %s: got %dx%d, want %dx%d", e.Stage, e.GotW, e.GotH, e.WantW, e.WantH)
}

// Field W×H 单通道浮点场，行优先
type Field struct {
	W, H int
	Pix  []float64
}

// NewField 创建全零浮点场
func NewField(w, h int) *Field {
	return &Field{W: w, H: h, Pix: make([]float64, w*h)}
}

// Mask W×H 单通道 8 位场（alpha / trimap）
type Mask struct {
	W, H int
	Pix  []uint8
}

// NewMask 创建全零掩码
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]uint8, w*h)}
}

// MaskFromBytes 用已有缓冲区构造掩码，长度必须等于 w*h
func MaskFromBytes(pix []uint8, w, h int) (*Mask, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyField
	}
	if len(pix) != w*h {
		return nil, &DimensionError{Stage: "mask", GotLen: len(pix), Expect: w * h}
	}
	return &Mask{W: w, H: h, Pix: pix}, nil
}

// Clone 深拷贝
func (m *Mask) Clone() *Mask {
	out := NewMask(m.W, m.H)
	copy(out.Pix, m.Pix)
	return out
}

// Float 转为 [0,255] 浮点场
func (m *Mask) Float() *Field {
	f := NewField(m.W, m.H)
	for i, v := range m.Pix {
		f.Pix[i] = float64(v)
	}
	return f
}

// Mask 将浮点场四舍五入并截断到 [0,255]
func (f *Field) Mask() *Mask {
	m := NewMask(f.W, f.H)
	for i, v := range f.Pix {
		m.Pix[i] = clampByte(v)
	}
	return m
}

func (f *Field) valid() error {
	if f == nil || f.W <= 0 || f.H <= 0 {
		return ErrEmptyField
	}
	if len(f.Pix) != f.W*f.H {
		return &DimensionError{Stage: "field", GotLen: len(f.Pix), Expect: f.W * f.H}
	}
	return nil
}

func (m *Mask) valid() error {
	if m == nil || m.W <= 0 || m.H <= 0 {
		return ErrEmptyField
	}
	if len(m.Pix) != m.W*m.H {
		return &DimensionError{Stage: "mask", GotLen: len(m.Pix), Expect: m.W * m.H}
	}
	return nil
}

func sameSize(stage string, w, h, gotW, gotH int) error {
	if w != gotW || h != gotH {
		return &DimensionError{Stage: stage, WantW: w, WantH: h, GotW: gotW, GotH: gotH}
	}
	return nil
}

// clampByte NaN 视为 0
func clampByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
