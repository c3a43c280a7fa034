// Package images produces the resized artwork variants served to clients.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/obelow/aria/internal/domain"
)

// ThumbnailSizes are the square bounding boxes generated for every stored
// artwork object.
var ThumbnailSizes = []int{32, 64, 128}

// Resizer scales artwork down to a bounding box.
type Resizer interface {
	// Resize returns data scaled to fit within size x size, in the same
	// encoding it came in. Images already smaller are returned unchanged.
	Resize(data []byte, typ domain.ArtworkType, size int) ([]byte, error)
}

// StdResizer resizes with nearest neighbor sampling. Thumbnails are small
// enough that sampling quality is not worth a filtering pass.
type StdResizer struct{}

func (StdResizer) Resize(data []byte, typ domain.ArtworkType, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= size && h <= size {
		return data, nil
	}

	// Fit the longer edge to size, keeping aspect ratio.
	outW, outH := size, size
	if w > h {
		outH = h * size / w
	} else {
		outW = w * size / h
	}
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		srcY := bounds.Min.Y + y*h/outH
		for x := 0; x < outW; x++ {
			srcX := bounds.Min.X + x*w/outW
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}

	var buf bytes.Buffer
	switch typ {
	case domain.ArtworkPNG:
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
