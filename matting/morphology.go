package matting

type morphOp int

const (
	opErode morphOp = iota
	opDilate
	opOpen
	opClose
)

func (op morphOp) String() string {
	switch op {
	case opErode:
		return "erode"
	case opDilate:
		return "dilate"
	case opOpen:
		return "open"
	case opClose:
		return "close"
	}
	return "unknown"
}

// Erode 方形结构元素（边长 2·radius+1）的局部最小值，窗口在边界处裁剪
func Erode(alpha *Mask, radius int) (*Mask, error) {
	return morphology(alpha, radius, opErode)
}

// Dilate 局部最大值
func Dilate(alpha *Mask, radius int) (*Mask, error) {
	return morphology(alpha, radius, opDilate)
}

// MorphOpen 先腐蚀后膨胀，去掉孤立噪点
func MorphOpen(alpha *Mask, radius int) (*Mask, error) {
	return morphology(alpha, radius, opOpen)
}

// MorphClose 先膨胀后腐蚀，填补小孔
func MorphClose(alpha *Mask, radius int) (*Mask, error) {
	return morphology(alpha, radius, opClose)
}

// MorphCleanup 开运算后接闭运算
func MorphCleanup(alpha *Mask, radius int) (*Mask, error) {
	opened, err := MorphOpen(alpha, radius)
	if err != nil {
		return nil, err
	}
	return MorphClose(opened, radius)
}

func morphology(alpha *Mask, radius int, op morphOp) (*Mask, error) {
	if err := alpha.valid(); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return alpha.Clone(), nil
	}
	return morphologyEx(alpha, radius, op)
}
