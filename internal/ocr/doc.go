// Package ocr turns a photographed card into raw text.
//
// Two engines are available: the hosted OCR.space API and a local Tesseract
// build through gosseract. Tesseract needs cgo; binaries built without it
// still compile but report the engine as unavailable. Images are normalized
// with Preprocess before they reach either engine.
package ocr
