package analysis

import (
	"strings"
	"time"
)

// AnalysisID identifier type
type AnalysisID string

// BlockType tags a content block in the raw model output.
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockOther BlockType = "other"
)

// ContentBlock is one piece of the raw model response, in order.
type ContentBlock struct {
	Type BlockType `json:"type"`
	Text string    `json:"text,omitempty"`
}

// Result is an AI analysis stored for auditing and retrieval.
// The most recent result per document is the current one; older
// results are kept as history, never overwritten.
type Result struct {
	ID         AnalysisID     `json:"id"`
	DocumentID string         `json:"document_id"`
	OwnerID    string         `json:"owner_id"`
	Blocks     []ContentBlock `json:"blocks"`
	Model      string         `json:"model"`
	Prompt     string         `json:"prompt,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Text joins the text-typed blocks in order, blank-line separated.
func (r *Result) Text() string {
	var parts []string
	for _, b := range r.Blocks {
		if b.Type == BlockText && strings.TrimSpace(b.Text) != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
