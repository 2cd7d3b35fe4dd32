package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the embedded default
	// or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by the answer chains.
const (
	// PromptQuestionAnswer answers a question from stuffed context.
	// Placeholders: {context}, {question}.
	PromptQuestionAnswer = "question_answer"

	// PromptRefine improves and simplifies a first-pass answer.
	// Placeholder: {answer}.
	PromptRefine = "refine"

	// PromptCondenseQuestion rewrites a follow-up into a standalone question.
	// Placeholders: {chat_history}, {question}.
	PromptCondenseQuestion = "condense_question"

	// PromptConversationAnswer is the system message for conversational answers.
	// Placeholder: {context}.
	PromptConversationAnswer = "conversation_answer"
)

// Named placeholders substituted into prompt templates. They may appear in
// any order, any number of times; all other text is left as written.
const (
	PlaceholderContext     = "{context}"
	PlaceholderQuestion    = "{question}"
	PlaceholderAnswer      = "{answer}"
	PlaceholderChatHistory = "{chat_history}"
)
