package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/config"
)

// DefaultOCRSpaceURL is the public parse endpoint.
const DefaultOCRSpaceURL = "https://api.ocr.space/parse/image"

// OCRSpace calls the hosted OCR.space API.
type OCRSpace struct {
	httpClient *resty.Client
	url        string
	apiKey     string
	language   string
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// NewOCRSpace creates an OCR.space client.
func NewOCRSpace(cfg config.OCRSpaceAPI) *OCRSpace {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	url := cfg.URL
	if url == "" {
		url = DefaultOCRSpaceURL
	}
	language := cfg.Language
	if language == "" {
		language = "spa"
	}

	return &OCRSpace{
		httpClient: client,
		url:        url,
		apiKey:     cfg.APIKey,
		language:   language,
	}
}

func (o *OCRSpace) Name() string { return config.OCRSpace }

// ExtractText uploads the image as a base64 data URI and returns the text of
// the first parsed result. An empty result is not an error.
func (o *OCRSpace) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", o.fail(errors.New("empty image"))
	}

	dataURI := "data:" + http.DetectContentType(image) + ";base64," +
		base64.StdEncoding.EncodeToString(image)

	resp, err := o.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"apikey":            o.apiKey,
			"language":          o.language,
			"isOverlayRequired": "false",
			"base64Image":       dataURI,
		}).
		Post(o.url)
	if err != nil {
		return "", o.fail(fmt.Errorf("request failed: %w", err))
	}

	if resp.IsError() {
		log.Error().
			Int("status_code", resp.StatusCode()).
			Str("body", truncate(resp.String(), 200)).
			Msg("OCR.space returned error status")
		return "", o.fail(fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", o.fail(fmt.Errorf("failed to decode response: %w", err))
	}

	if parsed.IsErroredOnProcessing {
		return "", o.fail(errors.New(firstMessage(parsed.ErrorMessage)))
	}

	if len(parsed.ParsedResults) == 0 {
		return "", nil
	}
	return parsed.ParsedResults[0].ParsedText, nil
}

func (o *OCRSpace) fail(err error) error {
	return &Error{Backend: config.OCRSpace, Err: err}
}

// firstMessage reads ErrorMessage, which the API sends either as a string or
// as a list of strings.
func firstMessage(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return "processing failed"
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
