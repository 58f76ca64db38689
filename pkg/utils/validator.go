package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxPhotoSize caps uploads at 10MB, MaxAvatarSize at 5MB.
const (
	MaxPhotoSize  = 10 * 1024 * 1024
	MaxAvatarSize = 5 * 1024 * 1024
)

// Validators provides validation methods
type Validators struct{}

// NewValidators creates a new validators instance
func NewValidators() *Validators {
	return &Validators{}
}

// IsValidUsername checks length only; any non-empty name up to 15
// characters is accepted, emoji included.
func (v *Validators) IsValidUsername(username string) bool {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return false
	}
	return utf8.RuneCountInString(trimmed) <= 15
}

// IsValidFilename checks if a string is a valid filename
func (v *Validators) IsValidFilename(filename string) bool {
	invalid := []string{"\\", "/", ":", "*", "?", "\"", "<", ">", "|"}
	for _, char := range invalid {
		if strings.Contains(filename, char) {
			return false
		}
	}

	if len(filename) > 255 {
		return false
	}

	return true
}

// IsValidObjectPath checks if a string is a valid storage object path
func (v *Validators) IsValidObjectPath(path string) bool {
	if strings.Contains(path, "..") {
		return false
	}

	if strings.HasPrefix(path, "/") {
		return false
	}

	parts := strings.Split(path, "/")
	for _, part := range parts {
		if !v.IsValidFilename(part) {
			return false
		}
	}

	return true
}

// IsAllowedFileType checks if a file has an allowed extension
func (v *Validators) IsAllowedFileType(filename string, allowedExtensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) == 0 {
		return false
	}
	ext = ext[1:]

	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}

// IsValidImageFile checks if a file is a valid image based on extension
func (v *Validators) IsValidImageFile(filename string) bool {
	allowedExtensions := []string{"jpg", "jpeg", "png", "gif", "webp", "heic"}
	return v.IsAllowedFileType(filename, allowedExtensions)
}

// ValidateFileHeader performs basic validation on file header
func (v *Validators) ValidateFileHeader(fileHeader *multipart.FileHeader, maxSize int64) error {
	if fileHeader == nil {
		return errors.New("no file provided")
	}

	if fileHeader.Size == 0 {
		return errors.New("file is empty")
	}

	if fileHeader.Size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}

	if !v.IsValidFilename(fileHeader.Filename) {
		return errors.New("invalid filename")
	}

	return nil
}

// ValidatePhotoFile validates a photo upload
func (v *Validators) ValidatePhotoFile(fileHeader *multipart.FileHeader) error {
	if err := v.ValidateFileHeader(fileHeader, MaxPhotoSize); err != nil {
		return err
	}

	if !v.IsValidImageFile(fileHeader.Filename) {
		return errors.New("photo must be an image file (jpg, jpeg, png, gif, webp, heic)")
	}

	return nil
}

// ValidateAvatarFile validates an avatar file
func (v *Validators) ValidateAvatarFile(fileHeader *multipart.FileHeader) error {
	if err := v.ValidateFileHeader(fileHeader, MaxAvatarSize); err != nil {
		return err
	}

	if !v.IsValidImageFile(fileHeader.Filename) {
		return errors.New("avatar must be an image file (jpg, jpeg, png, gif, webp, heic)")
	}

	return nil
}
