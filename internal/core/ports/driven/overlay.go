package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsOverlay applies values from outside the config file, such as
// environment variables, on top of stored settings.
type SettingsOverlay interface {
	// Overlay overwrites the fields it has values for.
	Overlay(settings *domain.AppSettings)
}
