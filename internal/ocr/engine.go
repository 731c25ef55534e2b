package ocr

import (
	"context"
	"errors"
	"fmt"

	"stealthcompany.com/nutrireg/internal/config"
)

// ErrUnavailable is wrapped by engines that cannot run in this build or
// configuration.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Engine extracts the text printed on an image.
type Engine interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
	Name() string
}

// Error reports a failed extraction. Callers surface it to staff and fall
// back to manual entry.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// None is the engine used when OCR is switched off.
type None struct{}

func (None) Name() string { return config.OCRNone }

func (None) ExtractText(context.Context, []byte) (string, error) {
	return "", &Error{Backend: config.OCRNone, Err: ErrUnavailable}
}

// New builds the engine selected in cfg.
func New(cfg config.OCR) (Engine, error) {
	switch cfg.Backend {
	case config.OCRSpace:
		return NewOCRSpace(cfg.OCRSpace), nil
	case config.OCRTesseract:
		return NewTesseract(cfg.Tesseract), nil
	case config.OCRNone, "":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown ocr backend %q", cfg.Backend)
	}
}
