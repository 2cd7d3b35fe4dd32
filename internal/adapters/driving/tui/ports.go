// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// QA ingests documents and answers questions.
	QA driving.DocumentQA

	// Settings manages application settings. Optional; without it the
	// settings view reports that it is unavailable.
	Settings driving.SettingsService

	// SessionID names the session the chat view opens.
	SessionID string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.QA == nil {
		return ErrMissingQAService
	}
	return nil
}
