// Package driving defines the interfaces the CLI, TUI and MCP server call
// into: DocumentQA for ingesting and asking, SettingsService for
// configuration.
//
// Implementations live in internal/core/services.
package driving
