package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultSTTTimeout = 30 * time.Second

	// sttTranscribePath is appended to the configured endpoint.
	sttTranscribePath = "/transcribe_audio"
)

// sttResponse is the JSON shape returned by the transcription service.
type sttResponse struct {
	Transcript string `json:"transcript"`
}

// Transcriber calls an external speech-to-text service over multipart HTTP.
// A zero-value endpoint disables transcription: Transcribe then returns
// ("", nil) so audio messages degrade to text-free handling.
type Transcriber struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewTranscriber builds an STT client. endpoint may be empty to disable.
func NewTranscriber(endpoint, apiKey, model string) *Transcriber {
	return &Transcriber{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: defaultSTTTimeout},
	}
}

// Enabled reports whether an endpoint is configured.
func (t *Transcriber) Enabled() bool { return t.endpoint != "" }

// Transcribe uploads the audio and returns the transcript. Not-configured
// and empty-input cases are skipped silently; transport and parse errors
// are returned for the caller to log and degrade on.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if t.endpoint == "" || audio == nil {
		return "", nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("stt: create form file field: %w", err)
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return "", fmt.Errorf("stt: write audio bytes to form: %w", err)
	}
	if t.model != "" {
		if err := w.WriteField("model", t.model); err != nil {
			return "", fmt.Errorf("stt: write model field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("stt: close multipart writer: %w", err)
	}

	url := t.endpoint + sttTranscribePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("stt: build request to %q: %w", url, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt: request to %q failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("stt: read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt: upstream returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result sttResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("stt: parse response JSON: %w", err)
	}

	slog.Debug("stt transcript received", "length", len(result.Transcript))
	return result.Transcript, nil
}
