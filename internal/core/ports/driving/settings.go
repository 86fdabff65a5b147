package driving

import "github.com/custodia-labs/touchminer/internal/core/domain"

// SettingsService resolves the configuration of a run from defaults, the
// config file and the environment. Command-line overrides are applied by the caller.
type SettingsService interface {
	// Get returns the merged settings. The result is not validated.
	Get() (*domain.MinerSettings, error)

	// Set parses, checks and persists one config file value.
	Set(key, value string) error

	// Unset removes a config file value so its default applies again.
	Unset(key string) error

	// Keys lists the settable config keys.
	Keys() []string
}
