//go:build cgo

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

type tesseractResult struct {
	text string
	err  error
}

// ExtractText runs recognition on a fresh gosseract client. The call itself
// can't be interrupted, so a cancelled ctx only stops the wait.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", t.fail(err)
	}

	done := make(chan tesseractResult, 1)
	go func() {
		text, err := t.recognize(image)
		done <- tesseractResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", t.fail(ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", t.fail(res.err)
		}
		return res.text, nil
	}
}

func (t *Tesseract) recognize(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPath != "" {
		if err := client.SetTessdataPrefix(t.tessdataPath); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return text, nil
}
