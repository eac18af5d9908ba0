// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - SettingsStore: TOML or YAML settings with .env and environment overrides
//   - PromptStore: user-editable prompt templates with embedded defaults
package file
