package genai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apierrors "github.com/mfigueira/bananachat/internal/errors"
	"github.com/mfigueira/bananachat/internal/models"
)

func TestBuildRequestBody_AttachmentsBeforePrompt(t *testing.T) {
	attachments := []models.Attachment{
		{MIMEType: "image/png", Data: "AAAA"},
		{MIMEType: "image/jpeg", Data: "BBBB"},
	}

	payload, err := buildRequestBody("make it blue", attachments, nil)
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}

	var req generateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		t.Fatalf("payload not valid JSON: %v", err)
	}
	if len(req.Contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(req.Contents))
	}

	parts := req.Contents[0].Parts
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.Data != "AAAA" {
		t.Error("first part should be the first attachment")
	}
	if parts[1].InlineData == nil || parts[1].InlineData.Data != "BBBB" {
		t.Error("second part should be the second attachment")
	}
	if parts[2].Text != "make it blue" {
		t.Errorf("prompt should come last, got %+v", parts[2])
	}
}

func TestBuildRequestBody_SystemInstruction(t *testing.T) {
	payload, err := buildRequestBody("hi", nil, &GenerateOptions{
		SystemInstruction: "only images",
	})
	if err != nil {
		t.Fatalf("buildRequestBody failed: %v", err)
	}

	var req generateRequest
	_ = json.Unmarshal(payload, &req)
	if req.SystemInstruction == nil || len(req.SystemInstruction.Parts) != 1 {
		t.Fatal("systemInstruction missing")
	}
	if req.SystemInstruction.Parts[0].Text != "only images" {
		t.Errorf("systemInstruction = %+v", req.SystemInstruction.Parts[0])
	}
}

func TestBuildRequestBody_AspectRatio(t *testing.T) {
	payload, _ := buildRequestBody("hi", nil, &GenerateOptions{AspectRatio: "16:9"})
	if !strings.Contains(string(payload), `"aspectRatio":"16:9"`) {
		t.Errorf("aspect ratio not in payload: %s", payload)
	}

	payload, _ = buildRequestBody("hi", nil, &GenerateOptions{})
	if strings.Contains(string(payload), "imageConfig") {
		t.Errorf("empty aspect ratio should omit imageConfig: %s", payload)
	}
	if strings.Contains(string(payload), "generationConfig") {
		t.Errorf("empty aspect ratio should omit generationConfig: %s", payload)
	}
}

func TestParseResponse_Parts(t *testing.T) {
	body := `{
		"candidates": [{
			"content": {
				"parts": [
					{"text": "here you go"},
					{"inlineData": {"mimeType": "image/png", "data": "QUJD"}}
				]
			},
			"finishReason": "STOP"
		}]
	}`

	parts, err := parseResponse([]byte(body))
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[0].Text != "here you go" {
		t.Errorf("text part = %+v", parts[0])
	}
	if !parts[1].IsImage() || parts[1].InlineData.Data != "QUJD" {
		t.Errorf("image part = %+v", parts[1])
	}
}

func TestParseResponse_BlockedPrompt(t *testing.T) {
	body := `{"promptFeedback": {"blockReason": "SAFETY"}}`

	_, err := parseResponse([]byte(body))
	if err == nil {
		t.Fatal("expected error")
	}

	var blocked *apierrors.BlockedPromptError
	if !errors.As(err, &blocked) {
		t.Fatalf("got %T, want BlockedPromptError", err)
	}
	if !strings.Contains(err.Error(), apierrors.MarkerPromptBlocked) {
		t.Errorf("error should carry %s marker: %v", apierrors.MarkerPromptBlocked, err)
	}
}

func TestParseResponse_FinishReasons(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		marker string
	}{
		{"safety", "SAFETY", apierrors.MarkerSafety},
		{"recitation", "RECITATION", apierrors.MarkerRecitation},
		{"other with no parts", "OTHER", apierrors.MarkerFinishOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"candidates": [{"finishReason": "` + tt.reason + `"}]}`

			_, err := parseResponse([]byte(body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.marker) {
				t.Errorf("error = %v, want marker %s", err, tt.marker)
			}
		})
	}
}

func TestParseResponse_FinishOtherWithPartsSucceeds(t *testing.T) {
	body := `{
		"candidates": [{
			"content": {"parts": [{"inlineData": {"mimeType": "image/png", "data": "QQ=="}}]},
			"finishReason": "OTHER"
		}]
	}`

	parts, err := parseResponse([]byte(body))
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if len(parts) != 1 {
		t.Errorf("got %d parts, want 1", len(parts))
	}
}

func TestParseResponse_NoContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{}`},
		{"empty parts", `{"candidates": [{"content": {"parts": []}, "finishReason": "STOP"}]}`},
		{"empty text only", `{"candidates": [{"content": {"parts": [{"text": ""}]}, "finishReason": "STOP"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseResponse([]byte(tt.body))
			if !errors.Is(err, apierrors.ErrNoContent) {
				t.Errorf("got %v, want ErrNoContent", err)
			}
		})
	}
}

func TestGenerateContent_RejectsEmptyInput(t *testing.T) {
	c := &Client{apiKey: "k", baseURL: DefaultBaseURL}

	_, err := c.GenerateContent("", nil, nil)
	if err == nil {
		t.Error("expected error for empty prompt and attachments")
	}
}

func TestGenerateContent_ClosedClient(t *testing.T) {
	c := &Client{apiKey: "k", baseURL: DefaultBaseURL, closed: true}

	_, err := c.GenerateContent("hi", nil, nil)
	if !errors.Is(err, apierrors.ErrClientClosed) {
		t.Errorf("got %v, want ErrClientClosed", err)
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	if !errors.Is(err, apierrors.ErrMissingAPIKey) {
		t.Errorf("got %v, want ErrMissingAPIKey", err)
	}
}

func TestMockGenerator(t *testing.T) {
	gen := &MockGenerator{
		Results: []MockResult{
			{Parts: []models.MessagePart{models.TextPart("one")}},
			{Err: apierrors.NewFinishError(apierrors.MarkerSafety)},
		},
	}

	parts, err := gen.GenerateContent("first", nil, nil)
	if err != nil || len(parts) != 1 {
		t.Fatalf("first call = %v, %v", parts, err)
	}

	_, err = gen.GenerateContent("second", nil, nil)
	if err == nil {
		t.Fatal("second call should fail")
	}

	if gen.Calls != 2 {
		t.Errorf("Calls = %d, want 2", gen.Calls)
	}
	if gen.LastPrompt != "second" {
		t.Errorf("LastPrompt = %q", gen.LastPrompt)
	}
}
