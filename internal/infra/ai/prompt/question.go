package prompt

import "fmt"

// QuestionSystem keeps answers grounded in the supplied context.
func QuestionSystem() string {
	return `You answer questions about a single document. Use only the analysis context provided in the user message. If the context does not contain the answer, say so plainly instead of guessing. Answer in the language the question was asked in. Keep answers short and direct.`
}

// QuestionUser pairs the analysis context with the question.
func QuestionUser(question, contextText string) string {
	if contextText == "" {
		return fmt.Sprintf("No analysis context is available for this document.\n\nQuestion: %s", question)
	}
	return fmt.Sprintf("Document analysis context:\n%s\n\nQuestion: %s", contextText, question)
}
