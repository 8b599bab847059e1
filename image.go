package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ernyoke/imger/threshold"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrInputNotFound    = errors.New("input image not found")
	ErrUnsupportedImage = errors.New("unsupported image")
)

// LoadImage reads a raster image, or rasterizes an SVG, from filePath.
func LoadImage(filePath string) (image.Image, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, filePath)
		}
		return nil, err
	}

	if strings.ToLower(filepath.Ext(filePath)) == ".svg" {
		img, err := rasterizeSVG(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, filePath, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, filePath, err)
	}
	return img, nil
}

// Binarize converts src to a two-tone image: 0 for ink, 255 for background.
// Pixels darker than the level are ink.
func Binarize(src image.Image, opts BinarizeOptions) (*image.Gray, error) {
	gray := grayscale(src)

	if opts.Upscale > 0 && opts.Upscale != 1 {
		gray = upscale(gray, opts.Upscale)
	}

	var (
		bw  *image.Gray
		err error
	)
	if opts.Otsu {
		bw, err = threshold.OtsuThreshold(gray, threshold.ThreshBinary)
	} else {
		bw, err = threshold.Threshold(gray, opts.Threshold, threshold.ThreshBinary)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to binarize image: %w", err)
	}

	if opts.Invert {
		for i, v := range bw.Pix {
			bw.Pix[i] = 255 - v
		}
	}
	return bw, nil
}

// WriteBitmap stores a binarized image in a format the tracers read.
func WriteBitmap(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode bitmap %s: %w", path, err)
	}
	return f.Close()
}

// grayscale applies the luminance weights; transparent pixels become white.
func grayscale(src image.Image) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			if a == 0 {
				dst.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{255})
				continue
			}

			// Composite over white so half transparent ink stays light.
			r = r + (0xffff - a)
			g = g + (0xffff - a)
			b = b + (0xffff - a)

			gray := uint8(((299*r + 587*g + 114*b) / 1000) >> 8)
			dst.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{gray})
		}
	}
	return dst
}

func upscale(src *image.Gray, factor float64) *image.Gray {
	b := src.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
