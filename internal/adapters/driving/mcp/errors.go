// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ingest a document and ask questions about it.
package mcp

import "errors"

// ErrMissingQAService is returned when the question answering service is not provided.
var ErrMissingQAService = errors.New("mcp: question answering service is required")
