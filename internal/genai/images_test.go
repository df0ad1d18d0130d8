package genai

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mfigueira/bananachat/internal/models"
)

func TestSaveImagePart(t *testing.T) {
	dir := t.TempDir()
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	part := models.ImagePart("image/png", base64.StdEncoding.EncodeToString(raw))

	path, err := SaveImagePart(part, dir, 1)
	if err != nil {
		t.Fatalf("SaveImagePart failed: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path = %q, want .png extension", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "banana-") {
		t.Errorf("path = %q, want banana- prefix", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved image: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("saved bytes differ from decoded payload")
	}
}

func TestSaveImagePart_RejectsTextPart(t *testing.T) {
	_, err := SaveImagePart(models.TextPart("not an image"), t.TempDir(), 0)
	if err == nil {
		t.Error("expected error for text part")
	}
}

func TestSaveImagePart_BadBase64(t *testing.T) {
	part := models.ImagePart("image/png", "!!not-base64!!")

	_, err := SaveImagePart(part, t.TempDir(), 0)
	if err == nil {
		t.Error("expected decode error")
	}
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("jpeg bytes")
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	att, err := LoadAttachment(path)
	if err != nil {
		t.Fatalf("LoadAttachment failed: %v", err)
	}
	if att.MIMEType != "image/jpeg" {
		t.Errorf("MIMEType = %q", att.MIMEType)
	}
	if att.Data != base64.StdEncoding.EncodeToString(raw) {
		t.Errorf("Data not base64 of file contents")
	}
	if att.PreviewURL != path {
		t.Errorf("PreviewURL = %q, want source path", att.PreviewURL)
	}
}

func TestLoadAttachment_MissingFile(t *testing.T) {
	_, err := LoadAttachment(filepath.Join(t.TempDir(), "nope.png"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", ".png"},
		{"image/jpeg", ".jpg"},
		{"image/webp", ".webp"},
		{"image/gif", ".gif"},
		{"application/pdf", ".bin"},
	}

	for _, tt := range tests {
		if got := extensionForMIME(tt.mime); got != tt.want {
			t.Errorf("extensionForMIME(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}
