//go:build !cgo

package ocr

import (
	"context"
	"fmt"
)

// ExtractText always fails: gosseract needs cgo.
func (t *Tesseract) ExtractText(context.Context, []byte) (string, error) {
	return "", t.fail(fmt.Errorf("%w: built without cgo", ErrUnavailable))
}
