package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMimeType(t *testing.T) {
	valid := []string{
		"application/pdf",
		"APPLICATION/PDF",
		"application/pdf; charset=binary",
		"image/png",
		"image/jpeg",
		"text/plain",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	for _, mt := range valid {
		assert.NoError(t, ValidateMimeType(mt), mt)
	}

	invalid := []string{
		"",
		"application/zip",
		"video/mp4",
		"text/html",
	}
	for _, mt := range invalid {
		assert.Error(t, ValidateMimeType(mt), mt)
	}
}

func TestValidateFileName(t *testing.T) {
	assert.NoError(t, ValidateFileName("report.pdf"))
	assert.NoError(t, ValidateFileName("laporan akhir 2026.docx"))

	assert.Error(t, ValidateFileName(""))
	assert.Error(t, ValidateFileName("   "))
	assert.Error(t, ValidateFileName("../etc/passwd"))
	assert.Error(t, ValidateFileName("dir/file.pdf"))
	assert.Error(t, ValidateFileName("bad\x00name.pdf"))
	assert.Error(t, ValidateFileName(strings.Repeat("a", 256)+".pdf"))
}

func TestValidateQuestion(t *testing.T) {
	assert.NoError(t, ValidateQuestion("What is the total?"))
	assert.Error(t, ValidateQuestion("   "))
	assert.Error(t, ValidateQuestion(strings.Repeat("x", 2001)))
	assert.NoError(t, ValidateQuestion(strings.Repeat("x", 2000)))
}

func TestValidateOwnerID(t *testing.T) {
	assert.NoError(t, ValidateOwnerID("acme"))
	assert.NoError(t, ValidateOwnerID("acme-corp_01"))

	assert.Error(t, ValidateOwnerID(""))
	assert.Error(t, ValidateOwnerID("acme corp"))
	assert.Error(t, ValidateOwnerID("acme/1"))
	assert.Error(t, ValidateOwnerID(strings.Repeat("a", 65)))
}

func TestValidateDocumentID(t *testing.T) {
	assert.NoError(t, ValidateDocumentID("123e4567-e89b-42d3-a456-426614174000"))
	assert.Error(t, ValidateDocumentID(""))
	assert.Error(t, ValidateDocumentID("not-a-uuid"))
	assert.Error(t, ValidateDocumentID("123E4567-E89B-42D3-A456-426614174000"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(1000))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeString("  hello world  "))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2\x07"))
}
