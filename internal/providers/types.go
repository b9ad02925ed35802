// Package providers holds the outbound clients for model inference and
// speech transcription. Everything speaks plain HTTP; higher layers only
// see small interfaces.
package providers

import "errors"

var (
	// ErrEmptyCompletion is returned when the model answered with no text.
	ErrEmptyCompletion = errors.New("providers: empty completion")

	// ErrMalformedCompletion is returned when the model answered with
	// something the caller cannot use (bad JSON, missing fields).
	ErrMalformedCompletion = errors.New("providers: malformed completion")
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"` // "json_object"
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}
