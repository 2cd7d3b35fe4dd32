package domain

// AskMode selects which answer pipeline handles a query.
type AskMode string

// Available ask modes.
const (
	// AskModeSingleTurn answers each query in isolation and refines the answer.
	AskModeSingleTurn AskMode = "single_turn"

	// AskModeConversational answers with conversation memory.
	AskModeConversational AskMode = "conversational"
)

// IsValid returns true if the mode is recognised.
func (m AskMode) IsValid() bool {
	return m == AskModeSingleTurn || m == AskModeConversational
}

// String returns the string representation.
func (m AskMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m AskMode) Description() string {
	switch m {
	case AskModeSingleTurn:
		return "Single-turn"
	case AskModeConversational:
		return "Conversational"
	default:
		return unknownDescription
	}
}

// ParseAskMode maps user-facing names to an AskMode.
// Accepts the canonical values plus the short forms "single" and "chat".
func ParseAskMode(s string) (AskMode, bool) {
	switch s {
	case "single", "single-turn", string(AskModeSingleTurn):
		return AskModeSingleTurn, true
	case "chat", "conversation", string(AskModeConversational):
		return AskModeConversational, true
	default:
		return "", false
	}
}

// Answer is generated text returned to the caller.
type Answer struct {
	// Text is the final answer text.
	Text string

	// Question is the standalone question used for retrieval.
	// Equals the raw query unless it was condensed.
	Question string

	// Context is the retrieved context that produced the answer.
	Context []Chunk

	// Mode is the pipeline that produced the answer.
	Mode AskMode
}
