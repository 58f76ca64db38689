package utils

import (
	"mime"
	"net/http"
	"path/filepath"
)

// ContentTypeDetector provides methods to detect photo content types
type ContentTypeDetector struct{}

// NewContentTypeDetector creates a new content type detector
func NewContentTypeDetector() *ContentTypeDetector {
	return &ContentTypeDetector{}
}

// DetectContentTypeFromExtension tries to detect content type from a file extension
func (d *ContentTypeDetector) DetectContentTypeFromExtension(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "application/octet-stream"
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

// DetectContentTypeFromBytes tries to detect content type from the file content
func (d *ContentTypeDetector) DetectContentTypeFromBytes(data []byte) string {
	return http.DetectContentType(data)
}

// DetectContentType tries to detect content type from both extension and content
func (d *ContentTypeDetector) DetectContentType(filename string, data []byte) string {
	contentType := d.DetectContentTypeFromExtension(filename)
	if contentType == "application/octet-stream" {
		return d.DetectContentTypeFromBytes(data)
	}
	return contentType
}

// IsImageContentType checks if a content type is an image
func (d *ContentTypeDetector) IsImageContentType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/heic", "image/heif":
		return true
	default:
		return false
	}
}
