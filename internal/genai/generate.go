package genai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/mfigueira/bananachat/internal/errors"
	"github.com/mfigueira/bananachat/internal/models"
)

// GenerateOptions contains options for one content generation call.
type GenerateOptions struct {
	Model             string
	SystemInstruction string
	// AspectRatio is a concrete ratio token ("16:9"). Empty means omit the
	// image configuration entirely and let the server pick.
	AspectRatio string
}

// Request body types mirror the generateContent wire format. MessagePart
// already carries the right JSON shape for parts.
type generateRequest struct {
	Contents          []requestContent  `json:"contents"`
	SystemInstruction *requestContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type requestContent struct {
	Parts []models.MessagePart `json:"parts"`
}

type generationConfig struct {
	ImageConfig *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

const errorBodyLimit = 4096

// GenerateContent sends a prompt with optional attachments to the model and
// returns the response parts. A request with neither prompt nor attachments
// is rejected locally.
func (c *Client) GenerateContent(prompt string, attachments []models.Attachment, opts *GenerateOptions) ([]models.MessagePart, error) {
	if prompt == "" && len(attachments) == 0 {
		return nil, fmt.Errorf("prompt and attachments cannot both be empty")
	}

	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	model := models.AssistantNanoBanana.Model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}

	payload, err := buildRequestBody(prompt, attachments, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL(), model)

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError("generate content", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != 200 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, apierrors.NewAPIError(resp.StatusCode, endpoint, string(errorBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseResponse(body)
}

// buildRequestBody assembles the JSON payload. Attachments come first, then
// the text prompt, matching the order the model expects for image editing.
func buildRequestBody(prompt string, attachments []models.Attachment, opts *GenerateOptions) ([]byte, error) {
	var parts []models.MessagePart
	for _, att := range attachments {
		parts = append(parts, att.Part())
	}
	if prompt != "" {
		parts = append(parts, models.TextPart(prompt))
	}

	reqBody := generateRequest{
		Contents: []requestContent{{Parts: parts}},
	}

	if opts != nil && opts.SystemInstruction != "" {
		reqBody.SystemInstruction = &requestContent{
			Parts: []models.MessagePart{models.TextPart(opts.SystemInstruction)},
		}
	}

	if opts != nil && opts.AspectRatio != "" {
		reqBody.GenerationConfig = &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: opts.AspectRatio},
		}
	}

	return json.Marshal(reqBody)
}

// parseResponse extracts content parts from a generateContent response and
// raises the classifiable failure markers for blocked or empty results.
func parseResponse(body []byte) ([]models.MessagePart, error) {
	parsed := gjson.ParseBytes(body)

	// Prompt rejected before any generation took place.
	if blockReason := parsed.Get("promptFeedback.blockReason"); blockReason.Exists() && blockReason.String() != "" {
		return nil, apierrors.NewBlockedPromptError(blockReason.String())
	}

	candidate := parsed.Get("candidates.0")
	candidateParts := candidate.Get("content.parts")

	switch candidate.Get("finishReason").String() {
	case "SAFETY":
		return nil, apierrors.NewFinishError(apierrors.MarkerSafety)
	case "RECITATION":
		return nil, apierrors.NewFinishError(apierrors.MarkerRecitation)
	case "OTHER":
		// "OTHER" sometimes means a filter that is not strictly safety but
		// still blocks content. Only an error when nothing came back.
		if !candidateParts.Exists() || len(candidateParts.Array()) == 0 {
			return nil, apierrors.NewFinishError(apierrors.MarkerFinishOther)
		}
	}

	var parts []models.MessagePart
	candidateParts.ForEach(func(_, part gjson.Result) bool {
		if text := part.Get("text"); text.Exists() && text.String() != "" {
			parts = append(parts, models.TextPart(text.String()))
			return true
		}
		if inline := part.Get("inlineData"); inline.Exists() {
			parts = append(parts, models.ImagePart(
				inline.Get("mimeType").String(),
				inline.Get("data").String(),
			))
		}
		return true
	})

	if len(parts) == 0 {
		return nil, &apierrors.NoContentError{}
	}

	return parts, nil
}
