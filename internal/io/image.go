package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image formats as reported by image.DecodeConfig.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// ErrUnsupportedFormat is returned when asked to encode a format other than
// JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageInfo describes an encoded image without decoding its pixels.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// ImageService provides image processing operations for fetched assets.
//
// ImageService is used to:
//   - Identify the real format of a payload, whatever its URL says
//   - Re-encode images so content matches the destination file extension
//   - Downscale images to fit a maximum dimension
//
// Example usage:
//
//	svc := NewImageService()
//
//	info, _ := svc.Describe(data)
//	fmt.Println(info.Format, info.Width, info.Height)
//
//	jpg, _ := svc.ConvertToJPEG(ctx, pngData)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Describe returns the format and dimensions of an encoded image.
func (s *ImageService) Describe(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, errors.Wrap(err, "decode image header")
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// FormatForName returns the image format implied by a file name's extension,
// or "" when the extension is not one ImageService can encode.
func FormatForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".png":
		return FormatPNG
	default:
		return ""
	}
}

// Normalize prepares a fetched image for saving under name.
//
// If the payload's real format differs from the one name's extension implies,
// it is re-encoded. If maxSize is positive and either side exceeds it, the
// image is downscaled preserving aspect ratio. The returned flag reports
// whether data was changed. Names with extensions other than .jpg, .jpeg and
// .png are returned as-is.
//
// Example:
//
//	// A PNG served for "pepe_crying.jpg" comes back as JPEG bytes
//	out, changed, err := svc.Normalize(ctx, "pepe_crying.jpg", data, 1000)
func (s *ImageService) Normalize(ctx context.Context, name string, data []byte, maxSize int) ([]byte, bool, error) {
	target := FormatForName(name)
	if target == "" {
		return data, false, nil
	}

	info, err := s.Describe(data)
	if err != nil {
		return data, false, err
	}

	oversized := maxSize > 0 && (info.Width > maxSize || info.Height > maxSize)
	if info.Format == target && !oversized {
		return data, false, nil
	}

	if oversized {
		out, err := s.ResizeImage(ctx, data, maxSize, maxSize, target)
		if err != nil {
			return data, false, err
		}
		return out, true, nil
	}

	out, err := s.convert(data, target)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and images already within bounds keep their
// size. The result is encoded as format (FormatJPEG or FormatPNG).
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// Resize to fit within 1000x1000, maintaining aspect ratio
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000, FormatJPEG)
//	// A 1500x1000 image becomes 1000x666
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int, format string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encode(dst, format)
}

// ConvertToJPEG converts an image to JPEG format with 90% quality.
//
// Example:
//
//	jpegData, err := svc.ConvertToJPEG(ctx, pngData)
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	return s.convert(data, FormatJPEG)
}

// ConvertToPNG converts an image to PNG format.
func (s *ImageService) ConvertToPNG(ctx context.Context, data []byte) ([]byte, error) {
	return s.convert(data, FormatPNG)
}

func (s *ImageService) convert(data []byte, format string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}
	return encode(img, format)
}

// fitWithin scales width x height down to fit maxWidth x maxHeight.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: 90}); err != nil {
			return nil, errors.Wrap(err, "encode jpeg")
		}
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, errors.Wrap(err, "encode png")
		}
	default:
		return nil, errors.Wrap(ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

// flatten composites img over white, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Over)
	return dst
}
