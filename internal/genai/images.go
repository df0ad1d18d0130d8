package genai

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mfigueira/bananachat/internal/models"
)

// extensionForMIME maps image MIME types to file extensions.
func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

// SaveImagePart decodes an inline-data part and writes it to dir. seq
// disambiguates multiple images from the same turn. Returns the saved path.
func SaveImagePart(part models.MessagePart, dir string, seq int) (string, error) {
	if !part.IsImage() {
		return "", fmt.Errorf("part has no inline image data")
	}

	// 0o700: generated images may be sensitive
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	name := fmt.Sprintf("banana-%s-%02d%s",
		time.Now().Format("20060102-150405"), seq, extensionForMIME(part.InlineData.MIMEType))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return path, nil
}

// LoadAttachment reads a local image file into a transient attachment.
func LoadAttachment(path string) (models.Attachment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	mimeType := mimeForExtension(filepath.Ext(path))

	return models.Attachment{
		MIMEType:   mimeType,
		Data:       base64.StdEncoding.EncodeToString(raw),
		PreviewURL: path,
	}, nil
}

func mimeForExtension(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
