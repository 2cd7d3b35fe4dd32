package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.DocumentQA = (*Orchestrator)(nil)

// Messages shown to the user in place of recoverable errors.
const (
	MsgIndexNotFound        = "Vector database not found. Please upload a document first."
	MsgRetrieverUnavailable = "Failed to create retriever from vector database."
	msgQueryFailedPrefix    = "Error processing query: "
)

// storageWarningPrefix marks ingestion storage failures.
const storageWarningPrefix = "continuing without vector storage: "

// Splitter turns loaded documents into chunks.
type Splitter interface {
	ProcessAll(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error)
}

// OrchestratorConfig holds the collaborators of an Orchestrator.
// Sessions is optional; without it sessions live only as long as the caller
// keeps them.
type OrchestratorConfig struct {
	Stager        driven.UploadStager
	Loaders       driven.LoaderRegistry
	Splitter      Splitter
	Index         *IndexStore
	LLM           driven.LLMService
	Prompts       driven.PromptStore
	Conversations driven.ConversationStore
	Sessions      driven.SessionStore

	// IndexDir is the index location given to new sessions.
	IndexDir string

	// TopK is the number of chunks retrieved per query.
	TopK int

	// MaxTurns bounds each session's memory. Zero keeps every turn; a
	// positive value below one exchange keeps one exchange.
	MaxTurns int
}

// Orchestrator ties ingestion, retrieval and both answer chains to a session.
type Orchestrator struct {
	cfg OrchestratorConfig
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.IndexDir == "" {
		cfg.IndexDir = domain.DefaultIndexDir
	}
	return &Orchestrator{cfg: cfg}
}

// Session restores the session with the given id or creates it. A valid mode
// replaces the stored one.
func (o *Orchestrator) Session(ctx context.Context, id string, mode domain.AskMode) (*domain.Session, error) {
	if id != "" && o.cfg.Sessions != nil {
		sess, err := o.cfg.Sessions.Get(ctx, id)
		switch {
		case err == nil:
			if mode.IsValid() && mode != sess.Mode {
				sess.Mode = mode
				if err := o.cfg.Sessions.Save(ctx, sess); err != nil {
					return nil, fmt.Errorf("save session: %w", err)
				}
			}
			return sess, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("load session %s: %w", id, err)
		}
	}

	sess := domain.NewSession(id, mode)
	sess.IndexLocation = o.cfg.IndexDir
	if err := o.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	logger.Debug("Created session %s (%s)", sess.ID, sess.Mode)
	return sess, nil
}

// Ingest stages the upload, loads and chunks it, and stores the chunks in the
// session's index. Staging, loading and chunking failures are errors; a
// failure to store is reported as a warning and the session still becomes
// ready.
func (o *Orchestrator) Ingest(ctx context.Context, sess *domain.Session, name string, r io.Reader) (*domain.IngestReport, error) {
	logger.Section("Ingest")

	path, err := o.cfg.Stager.Stage(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	loader, err := o.cfg.Loaders.ForPath(path)
	if err != nil {
		return nil, err
	}
	docs, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if !hasText(docs) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, name)
	}
	logger.Info("Loaded %d documents with %s loader", len(docs), loader.Name())

	chunks, err := o.cfg.Splitter.ProcessAll(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", name, err)
	}
	logger.Info("Split into %d chunks", len(chunks))

	report := &domain.IngestReport{
		Source:    path,
		Documents: len(docs),
		Chunks:    len(chunks),
	}

	location := o.location(sess)
	handle, err := o.cfg.Index.OpenOrCreate(ctx, location)
	if err != nil {
		report.Warnings = append(report.Warnings, storageWarningPrefix+err.Error())
		logger.Warn("Could not open index at %s: %v", location, err)
	} else {
		result := handle.Add(ctx, chunks)
		_ = handle.Close()
		report.Stored = result.Stored
		for _, w := range result.Warnings {
			report.Warnings = append(report.Warnings, storageWarningPrefix+w)
		}
	}

	sess.Ready = true
	sess.IndexLocation = location
	if err := o.saveSession(ctx, sess); err != nil {
		return nil, err
	}
	return report, nil
}

// Ask answers query in the session's mode.
func (o *Orchestrator) Ask(ctx context.Context, sess *domain.Session, query string) (*domain.Answer, error) {
	if sess.Mode == domain.AskModeConversational {
		answer, _, err := o.AskConversational(ctx, sess, query)
		return answer, err
	}
	return o.AskSingleTurn(ctx, sess, query)
}

// AskSingleTurn answers query without touching memory.
func (o *Orchestrator) AskSingleTurn(ctx context.Context, sess *domain.Session, query string) (*domain.Answer, error) {
	retriever, closeFn, err := o.retriever(ctx, sess)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return NewAnswerChain(retriever, o.cfg.LLM, o.cfg.Prompts).Answer(ctx, query)
}

// AskConversational answers query with the session memory and returns the
// updated transcript.
func (o *Orchestrator) AskConversational(ctx context.Context, sess *domain.Session, query string) (*domain.Answer, []domain.Turn, error) {
	retriever, closeFn, err := o.retriever(ctx, sess)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	chain := NewConversationalChain(retriever, o.cfg.LLM, o.cfg.Prompts)
	return chain.Ask(ctx, query, o.Memory(sess))
}

// History returns the session transcript, oldest first.
func (o *Orchestrator) History(ctx context.Context, sess *domain.Session) ([]domain.Turn, error) {
	return o.Memory(sess).All(ctx)
}

// ClearHistory empties the session memory.
func (o *Orchestrator) ClearHistory(ctx context.Context, sess *domain.Session) error {
	logger.Debug("Clearing history of session %s", sess.ID)
	return o.Memory(sess).Clear(ctx)
}

// Memory returns the conversation memory bound to the session.
func (o *Orchestrator) Memory(sess *domain.Session) *Memory {
	return NewMemory(o.cfg.Conversations, sess.ID, o.cfg.MaxTurns)
}

// retriever opens the session's index for querying. The index must exist
// before every question, whatever the session's ready flag says; a session
// that has not ingested anything may still query an index persisted by an
// earlier run.
func (o *Orchestrator) retriever(ctx context.Context, sess *domain.Session) (*Retriever, func(), error) {
	location := o.location(sess)

	exists, err := o.cfg.Index.Exists(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrRetrieverUnavailable, err)
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w at %s", domain.ErrIndexNotFound, location)
	}
	if !o.cfg.Index.CanEmbed() {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrRetrieverUnavailable, domain.ErrEmbeddingUnavailable)
	}

	handle, err := o.cfg.Index.OpenOrCreate(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrRetrieverUnavailable, err)
	}
	logger.Debug("Vector database found at %s", location)

	return handle.AsRetriever(o.cfg.TopK), func() { _ = handle.Close() }, nil
}

func (o *Orchestrator) location(sess *domain.Session) string {
	if sess.IndexLocation != "" {
		return sess.IndexLocation
	}
	return o.cfg.IndexDir
}

func (o *Orchestrator) saveSession(ctx context.Context, sess *domain.Session) error {
	if o.cfg.Sessions == nil {
		return nil
	}
	if err := o.cfg.Sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func hasText(docs []domain.Document) bool {
	for _, d := range docs {
		if strings.TrimSpace(d.Content) != "" {
			return true
		}
	}
	return false
}

// UserMessage converts an Ask error into the message shown to the user.
// The full error is logged.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	logger.Error("Detailed error: %v", err)

	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return MsgIndexNotFound
	case errors.Is(err, domain.ErrRetrieverUnavailable):
		return MsgRetrieverUnavailable
	default:
		return msgQueryFailedPrefix + err.Error()
	}
}
