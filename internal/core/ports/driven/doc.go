// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LLMService: Text generation for answering, refining and condensing
//   - EmbeddingService: Vector embeddings for the fixed embedding model
//   - VectorStore: Persistent nearest-neighbour collections keyed by location
//   - DocumentLoader: Extracts text from an uploaded file
//   - PostProcessor: Splits documents into chunks
//   - ConversationStore, SessionStore: Conversation memory and session state
//   - UploadStager: Copies an upload to its fixed staging path
//   - ConfigStore, PromptStore: Configuration and prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
