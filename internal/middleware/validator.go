package middleware

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const maxFileNameLen = 255

const maxQuestionLen = 2000

// allowedMimeTypes covers the document types the analysis pipeline
// accepts: PDFs, images (camera scans), plain text and office docs.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/octet-stream": true,
	"text/plain":               true,
	"text/markdown":            true,
	"text/csv":                 true,
}

// ValidateMimeType checks the content type against the allow-list;
// any image/* type is accepted for camera scans.
func ValidateMimeType(mimeType string) error {
	if mimeType == "" {
		return fmt.Errorf("mime type cannot be empty")
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if strings.HasPrefix(mt, "image/") {
		return nil
	}
	if !allowedMimeTypes[mt] {
		return fmt.Errorf("unsupported file type: %s", mimeType)
	}
	return nil
}

// ValidateFileName rejects traversal and control characters
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxFileNameLen {
		return fmt.Errorf("file name too long (max %d characters)", maxFileNameLen)
	}
	if name != filepath.Base(name) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid file name")
	}
	for _, r := range name {
		if r < 32 || r == 0x7f {
			return fmt.Errorf("invalid characters in file name")
		}
	}
	return nil
}

// ValidateQuestion ensures the question is non-empty and bounded
func ValidateQuestion(question string) error {
	q := strings.TrimSpace(question)
	if q == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if utf8.RuneCountInString(q) > maxQuestionLen {
		return fmt.Errorf("question too long (max %d characters)", maxQuestionLen)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateOwnerID validates owner ID format
func ValidateOwnerID(owner string) error {
	if owner == "" {
		return fmt.Errorf("owner ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, owner)
	if !matched {
		return fmt.Errorf("invalid owner ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateDocumentID validates document ID format (UUID)
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID cannot be empty")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid document ID format")
	}

	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
