package driven

import "github.com/custodia-labs/askdocs/internal/core/domain"

// SettingsStore loads and saves application settings.
type SettingsStore interface {
	// Load returns the settings with file values and environment overrides applied.
	// A missing file yields defaults.
	Load() (domain.Settings, error)

	// Save writes settings to the settings file. Environment overrides are
	// not written back.
	Save(settings domain.Settings) error

	// Path returns the settings file location.
	Path() string
}
