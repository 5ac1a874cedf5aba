package imageio

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/pargrid"
)

// GrayFromImage converts any image to an intensity buffer with samples in
// [0, 1], using the standard luma weights of color.GrayModel.
func GrayFromImage(img image.Image) (*pargrid.FloatBuffer, error) {
	b := img.Bounds()
	gray, ok := img.(*image.Gray)
	if !ok || gray.Rect.Min != (image.Point{}) {
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(gray, gray.Rect, img, b.Min, xdraw.Src)
	}

	buf, err := pargrid.NewBuffer[float32](b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := range buf.Height() {
		row := buf.Row(y)
		src := gray.Pix[y*gray.Stride : y*gray.Stride+buf.Width()]
		for x, v := range src {
			row[x] = float32(v) / 255
		}
	}
	return buf, nil
}

// RGBFromImage converts any image to an RGB buffer. Colours are taken
// non-premultiplied; alpha is dropped.
func RGBFromImage(img image.Image) (*pargrid.RGBBuffer, error) {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(nrgba, nrgba.Rect, img, b.Min, xdraw.Src)
	}

	buf, err := pargrid.NewBuffer[pargrid.RGB](b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := range buf.Height() {
		row := buf.Row(y)
		off := y * nrgba.Stride
		for x := range row {
			p := nrgba.Pix[off+x*4 : off+x*4+3]
			row[x] = pargrid.RGB{R: p[0], G: p[1], B: p[2]}
		}
	}
	return buf, nil
}

// GrayToImage converts an intensity buffer to an 8-bit grayscale image.
// Samples are clamped to [0, 1] and scaled to 0–255.
func GrayToImage(buf *pargrid.FloatBuffer) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, buf.Width(), buf.Height()))
	for y := range buf.Height() {
		dst := img.Pix[y*img.Stride:]
		for x, v := range buf.Row(y) {
			dst[x] = unitToByte(v)
		}
	}
	return img
}

// RGBToImage converts an RGB buffer to an opaque NRGBA image.
func RGBToImage(buf *pargrid.RGBBuffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width(), buf.Height()))
	for y := range buf.Height() {
		dst := img.Pix[y*img.Stride:]
		for x, p := range buf.Row(y) {
			dst[x*4+0] = p.R
			dst[x*4+1] = p.G
			dst[x*4+2] = p.B
			dst[x*4+3] = 255
		}
	}
	return img
}

// unitToByte maps [0, 1] to 0–255 with rounding; NaN maps to 0.
func unitToByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
