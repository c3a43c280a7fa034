package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/obelow/aria/internal/domain"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestResizeScalesDown(t *testing.T) {
	data := testPNG(t, 200, 100)

	out, err := StdResizer{}.Resize(data, domain.ArtworkPNG, 32)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
		t.Errorf("thumbnail bounds = %v, want 32x16", img.Bounds())
	}
}

func TestResizeKeepsSmallImages(t *testing.T) {
	data := testPNG(t, 16, 16)

	out, err := StdResizer{}.Resize(data, domain.ArtworkPNG, 32)
	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("small image was re-encoded")
	}
}

func TestResizeRejectsGarbage(t *testing.T) {
	if _, err := (StdResizer{}).Resize([]byte("not an image"), domain.ArtworkJPG, 32); err == nil {
		t.Error("expected decode error")
	}
}
