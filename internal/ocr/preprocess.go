package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image: only JPEG and PNG are accepted")
	ErrImageTooLarge    = errors.New("image exceeds the upload limit")
)

// PreprocessOptions bounds the accepted upload and the working resolution.
type PreprocessOptions struct {
	MaxBytes     int64
	MaxDimension int
	Contrast     float64
}

// DetectType sniffs the image format and returns its MIME type.
func DetectType(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case "image/jpeg", "image/png":
		return ct, nil
	default:
		return "", fmt.Errorf("%w (got %s)", ErrUnsupportedImage, ct)
	}
}

// Preprocess prepares a phone photo for recognition: it applies the EXIF
// orientation, shrinks the image to fit MaxDimension, converts it to
// grayscale with a contrast boost and re-encodes it as JPEG.
func Preprocess(data []byte, opts PreprocessOptions) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUnsupportedImage)
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrImageTooLarge, len(data), opts.MaxBytes)
	}
	if _, err := DetectType(data); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if opts.MaxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
			img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
		}
	}

	gray := imaging.Grayscale(img)
	if opts.Contrast != 0 {
		gray = imaging.AdjustContrast(gray, opts.Contrast)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
