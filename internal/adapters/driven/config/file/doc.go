// Package file keeps docqa's user-editable state on disk under ~/.docqa.
//
// Adapters:
//   - ConfigStore: settings in config.toml
//   - PromptStore: prompt templates in prompts/, with embedded defaults and
//     reload on change
package file
