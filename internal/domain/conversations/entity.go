package conversations

import "time"

// ID tipe untuk ConversationEntry
type EntryID string

// Entry is one question/answer turn for a document. Answer stays nil
// while the question is in flight; readers render that as a pending
// bubble. A pending entry is always resolved later, either with the
// model's answer or with a visible failure message.
type Entry struct {
	ID         EntryID   `json:"id"`
	DocumentID string    `json:"document_id"`
	Question   string    `json:"question"`
	Answer     *string   `json:"answer"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Answered reports whether the entry has resolved.
func (e *Entry) Answered() bool { return e.Answer != nil }
