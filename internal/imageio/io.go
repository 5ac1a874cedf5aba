// Package imageio loads and saves pargrid buffers as image files.
//
// It is the codec collaborator of the engine: the engine itself never
// touches files. Decoding auto-detects PNG, JPEG, GIF, BMP, TIFF and WebP;
// encoding picks PNG, JPEG, BMP or TIFF from the file extension. Every load,
// decode or save failure is reported as a pargrid KindIOFailure error.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/pargrid"
)

// ErrUnsupportedFormat is returned when a file extension has no encoder.
var ErrUnsupportedFormat = errors.New("imageio: unsupported format")

// JPEGQuality is the quality used when saving .jpg/.jpeg files.
const JPEGQuality = 95

// Format identifies an output encoding.
type Format int

// Supported output encodings.
const (
	FormatPNG Format = iota
	FormatJPEG
	FormatBMP
	FormatTIFF
)

// FormatFromPath selects an encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadGray loads an image file as a single-channel intensity buffer with
// samples in [0, 1].
func LoadGray(path string) (*pargrid.FloatBuffer, error) {
	img, err := load(path)
	if err != nil {
		return nil, pargrid.IOError("LoadGray", path, err)
	}
	return grayFrom("LoadGray", path, img)
}

// LoadRGB loads an image file as an RGB byte buffer. Alpha is discarded.
func LoadRGB(path string) (*pargrid.RGBBuffer, error) {
	img, err := load(path)
	if err != nil {
		return nil, pargrid.IOError("LoadRGB", path, err)
	}
	return rgbFrom("LoadRGB", path, img)
}

// SaveGray writes an intensity buffer, mapping [0, 1] to 0–255.
func SaveGray(buf *pargrid.FloatBuffer, path string) error {
	return pargrid.IOError("SaveGray", path, save(GrayToImage(buf), path))
}

// SaveRGB writes an RGB buffer as an opaque image.
func SaveRGB(buf *pargrid.RGBBuffer, path string) error {
	return pargrid.IOError("SaveRGB", path, save(RGBToImage(buf), path))
}

// DecodeGray decodes an image from r as an intensity buffer.
func DecodeGray(r io.Reader) (*pargrid.FloatBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, pargrid.IOError("DecodeGray", "", fmt.Errorf("decode: %w", err))
	}
	return grayFrom("DecodeGray", "", img)
}

// DecodeRGB decodes an image from r as an RGB buffer.
func DecodeRGB(r io.Reader) (*pargrid.RGBBuffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, pargrid.IOError("DecodeRGB", "", fmt.Errorf("decode: %w", err))
	}
	return rgbFrom("DecodeRGB", "", img)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: format %d", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// grayFrom converts a decoded image, reporting an unusable one (such as a
// 0×0 frame) as an I/O failure of op.
func grayFrom(op, path string, img image.Image) (*pargrid.FloatBuffer, error) {
	buf, err := GrayFromImage(img)
	if err != nil {
		return nil, pargrid.IOError(op, path, err)
	}
	return buf, nil
}

func rgbFrom(op, path string, img image.Image) (*pargrid.RGBBuffer, error) {
	buf, err := RGBFromImage(img)
	if err != nil {
		return nil, pargrid.IOError(op, path, err)
	}
	return buf, nil
}

func load(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

func save(img image.Image, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
