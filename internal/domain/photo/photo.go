// Package photo validates uploaded badge photos and produces the square crop
// that is sent to the badge backend.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
	xdraw "golang.org/x/image/draw"
)

// MaxUploadBytes bounds a single photo upload.
const MaxUploadBytes = 10 << 20

// MaxPixels bounds width*height of an upload so a small, highly compressed file cannot
// expand into a huge pixel buffer.
const MaxPixels = 40_000_000

// OutputSize is the edge length in pixels of every cropped badge photo.
const OutputSize = 600

var (
	ErrEmpty             = errors.New("photo is empty")
	ErrTooLarge          = errors.New("photo must be under 10 MB")
	ErrTooManyPixels     = errors.New("photo dimensions are too large; use an image under 40 megapixels")
	ErrUnsupportedFormat = errors.New("photo must be a JPEG or PNG image")
	ErrNoUpload          = errors.New("upload a photo before cropping")
)

// Upload is a decoded photo as the user supplied it.
// INVARIANT: MIME is image/jpeg or image/png; Raw is the exact uploaded bytes.
type Upload struct {
	Raw   []byte
	MIME  string
	Image image.Image
}

// Bounds returns the pixel bounds of the uploaded image.
func (u *Upload) Bounds() image.Rectangle {
	return u.Image.Bounds()
}

// Decode sniffs, validates and decodes raw upload bytes.
// PRE: none
// POST: returns an Upload for JPEG/PNG input, a sentinel error otherwise
func Decode(raw []byte) (*Upload, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	if len(raw) > MaxUploadBytes {
		return nil, ErrTooLarge
	}
	mime := mimetype.Detect(raw)
	if !mime.Is("image/jpeg") && !mime.Is("image/png") {
		return nil, ErrUnsupportedFormat
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode photo header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode photo: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, ErrTooManyPixels
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode photo: invalid dimensions %dx%d", b.Dx(), b.Dy())
	}
	return &Upload{Raw: raw, MIME: mime.String(), Image: img}, nil
}

// Box is a square crop region in image pixel coordinates, relative to the image origin.
type Box struct {
	X    int
	Y    int
	Size int
}

// DefaultBox returns the largest square centered in bounds.
func DefaultBox(bounds image.Rectangle) Box {
	size := min(bounds.Dx(), bounds.Dy())
	return Box{
		X:    (bounds.Dx() - size) / 2,
		Y:    (bounds.Dy() - size) / 2,
		Size: size,
	}
}

// Clamp forces the box inside bounds. A non-positive or oversized box becomes the default box.
// POST: 0 < Size <= min(width, height); the box lies fully inside bounds
func (b Box) Clamp(bounds image.Rectangle) Box {
	maxSize := min(bounds.Dx(), bounds.Dy())
	if b.Size <= 0 || b.Size > maxSize {
		return DefaultBox(bounds)
	}
	b.X = max(0, min(b.X, bounds.Dx()-b.Size))
	b.Y = max(0, min(b.Y, bounds.Dy()-b.Size))
	return b
}

// CropSquare cuts box out of img and scales it to OutputSize x OutputSize.
// PRE: img has positive dimensions
// POST: returned image is square with edge OutputSize
func CropSquare(img image.Image, box Box) image.Image {
	bounds := img.Bounds()
	box = box.Clamp(bounds)

	cropRect := image.Rect(0, 0, box.Size, box.Size)
	cropped := image.NewRGBA(cropRect)
	src := image.Point{X: bounds.Min.X + box.X, Y: bounds.Min.Y + box.Y}
	stddraw.Draw(cropped, cropRect, img, src, stddraw.Src)

	out := image.NewRGBA(image.Rect(0, 0, OutputSize, OutputSize))
	xdraw.CatmullRom.Scale(out, out.Bounds(), cropped, cropped.Bounds(), xdraw.Over, nil)
	return out
}

// EncodePNG serializes img for upload.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
