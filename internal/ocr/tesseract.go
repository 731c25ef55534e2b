package ocr

import (
	"stealthcompany.com/nutrireg/internal/config"
)

// Tesseract runs the local Tesseract engine through gosseract.
type Tesseract struct {
	language     string
	tessdataPath string
}

// NewTesseract creates a Tesseract engine. Language defaults to spa.
func NewTesseract(cfg config.Tesseract) *Tesseract {
	language := cfg.Language
	if language == "" {
		language = "spa"
	}
	return &Tesseract{
		language:     language,
		tessdataPath: cfg.TessdataPath,
	}
}

func (t *Tesseract) Name() string { return config.OCRTesseract }

func (t *Tesseract) fail(err error) error {
	return &Error{Backend: config.OCRTesseract, Err: err}
}
