package matting

import (
	"image"
	"image/png"
	"io"
)

var pngEncoder = png.Encoder{CompressionLevel: png.BestCompression}

// EncodePNG 无损导出，保留 alpha
func EncodePNG(w io.Writer, img image.Image) error {
	return pngEncoder.Encode(w, img)
}
