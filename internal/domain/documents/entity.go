package documents

import (
	"time"
)

// ID tipe untuk Document
type DocumentID string

// Status enum, maju satu arah: uploaded -> analyzing -> analyzed,
// atau analyzing -> analysis_failed (terminal untuk attempt itu)
type Status string

const (
	StatusUploaded       Status = "uploaded"
	StatusAnalyzing      Status = "analyzing"
	StatusAnalyzed       Status = "analyzed"
	StatusAnalysisFailed Status = "analysis_failed"
)

// Aggregate Root: Document
type Document struct {
	ID           DocumentID `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Name         string     `json:"name"`
	OriginalName string     `json:"original_name"`
	MimeType     string     `json:"mime_type"`
	SizeBytes    int64      `json:"size_bytes"`
	BlobKey      string     `json:"blob_key,omitempty"`
	URL          string     `json:"url,omitempty"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
