// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The question-answering pipeline is built from small pieces:
//
//   - IndexStore / IndexHandle: open a persistent index and fill it with embedded chunks
//   - Retriever: top-k similarity search over one index
//   - AnswerChain: single-turn retrieval-QA followed by a refine step
//   - ConversationalChain: condense, retrieve, answer, remember
//   - Memory: per-session conversation over an injected store
//   - Orchestrator: ties the above to a session (driving.DocumentQA)
//
// Services are pure Go with no CGO or external dependencies.
package services
