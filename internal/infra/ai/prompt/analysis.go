package prompt

import "fmt"

// AnalysisSystem asks for plain text with labeled sections. The section
// headers here must stay within the parser's recognized vocabulary
// (see internal/domain/analysis); changing one without the other
// silently moves content between fields.
func AnalysisSystem() string {
	return `You are a document analysis assistant. Read the document the user points you to and produce a plain-text analysis with exactly these labeled sections, in this order:

Summary: one concise paragraph describing what the document is about.

Key Points:
1. first key point
2. second key point
(continue numbering as needed)

Details: a short paragraph with supporting detail worth surfacing.

Recommendations:
1. first suggested action
2. second suggested action

Rules:
- Use the section labels verbatim, each followed by a colon.
- Separate sections with a blank line.
- No markdown formatting, no code fences, no commentary outside the sections.
- If the document content is unavailable, analyze conservatively from the file type and name.`
}

// AnalysisUser builds a compact user message around the file URL.
func AnalysisUser(fileURL, mimeType string) string {
	return fmt.Sprintf("Analyze the document at this URL (type %s) and respond with the labeled sections. URL: %s", mimeType, fileURL)
}
