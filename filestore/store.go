// Package filestore persists uploaded listing images and brochures and hands
// back the public URL to embed in documents.
package filestore

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Store interface {
	// Save writes the file under key and returns its public URL.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

// BuildKey derives a collision-free storage key from an uploaded filename,
// rejecting anything that is not an image or PDF.
func BuildKey(filename string) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", "", fmt.Errorf("only images and PDF files are allowed")
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return uuid.NewString() + ext, contentType, nil
}
