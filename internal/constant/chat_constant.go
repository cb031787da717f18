package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Seeded as the first assistant message when a chat is created
	// with a non-empty source document.
	ChatWelcomeMessage = "Document loaded. What would you like to know?"

	ChatModeReview   = "review"
	ChatModeWrite    = "write"
	ChatModeResearch = "research"

	// User-facing message for any generation failure. The underlying
	// diagnostic stays in the server log.
	GenerationErrorMessage = "An error occurred while processing your question. Please try again."

	ExtractionErrorPrefix = "An error occurred while extracting text from the file. Please ensure it is a valid document or image."

	// Returned to capped anonymous callers instead of an answer.
	GateCappedMessage = "You have reached the free question limit. Please sign in to continue."

	EmptyDocumentMessage = "Document text cannot be empty."
	EmptyQuestionMessage = "Question cannot be empty."

	MaxSuggestedQuestions = 3
)

func IsValidChatMode(mode string) bool {
	switch mode {
	case ChatModeReview, ChatModeWrite, ChatModeResearch:
		return true
	}
	return false
}
