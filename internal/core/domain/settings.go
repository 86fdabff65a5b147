package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rotation identifies the token rotation policy.
type Rotation string

// Available rotation policies.
const (
	// RotationRoundRobin hands out pool[n mod len(pool)] for call n.
	RotationRoundRobin Rotation = "round_robin"

	// RotationHealthAware skips a token for a cooldown after repeated failures.
	RotationHealthAware Rotation = "health_aware"
)

// IsValid returns true if the rotation is recognised.
func (r Rotation) IsValid() bool {
	return r == RotationRoundRobin || r == RotationHealthAware
}

// ParseRotation parses a rotation name. Empty selects RotationRoundRobin.
func ParseRotation(s string) (Rotation, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return RotationRoundRobin, nil
	}
	r := Rotation(strings.ReplaceAll(s, "-", "_"))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: rotation %q", ErrUnsupportedType, s)
	}
	return r, nil
}

// Defaults for miner settings.
const (
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
	DefaultRetries     = 3
	DefaultPageSize    = 100
)

// OutputSettings names where the emitted dataset goes. Empty disables a sink.
type OutputSettings struct {
	CSV        string
	CountsCSV  string
	SQLiteDir  string
	ParquetDir string
}

// HasAny reports whether at least one file sink is configured.
func (o OutputSettings) HasAny() bool {
	return o.CSV != "" || o.CountsCSV != "" || o.SQLiteDir != "" || o.ParquetDir != ""
}

// MinerSettings is the resolved configuration for one run.
type MinerSettings struct {
	Repository  string
	Tokens      []string
	Rotation    Rotation

	// RequireAuth refuses to fall back to unauthenticated requests.
	RequireAuth bool

	Prefixes    []string
	Inventory   string
	Strategy    Strategy
	CountPolicy CountPolicy
	Concurrency int
	Timeout     time.Duration
	Retries     int

	// RequestsPerSecond throttles outbound calls; 0 derives it from the pool size.
	RequestsPerSecond float64

	// BaseURL overrides the API endpoint (GitHub Enterprise).
	BaseURL string

	ProbeStart      bool
	Output          OutputSettings
	MetricsTextfile string
}

// DefaultMinerSettings returns the default configuration.
func DefaultMinerSettings() MinerSettings {
	return MinerSettings{
		Rotation:    RotationRoundRobin,
		Strategy:    StrategyHistory,
		CountPolicy: CountPerFile,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		Retries:     DefaultRetries,
	}
}

// Authenticated reports whether any token is configured.
func (s MinerSettings) Authenticated() bool {
	return len(s.Tokens) > 0
}

// Validate reports configuration errors that must stop a run before any network call.
func (s MinerSettings) Validate() error {
	if s.Repository == "" {
		return fmt.Errorf("%w: repository is not set", ErrInvalidRepository)
	}
	if _, err := ParseRepository(s.Repository); err != nil {
		return err
	}
	if s.RequireAuth && !s.Authenticated() {
		return fmt.Errorf("%w: authenticated mode requested", ErrNoCredentials)
	}
	if len(s.Prefixes) == 0 && s.Inventory == "" {
		return fmt.Errorf("%w: either prefixes or an inventory file is required", ErrInvalidInput)
	}
	if len(s.Prefixes) > 0 && s.Inventory != "" {
		return fmt.Errorf("%w: prefixes and inventory are mutually exclusive", ErrInvalidInput)
	}
	if !s.Rotation.IsValid() {
		return fmt.Errorf("%w: rotation %q", ErrUnsupportedType, s.Rotation)
	}
	if !s.Strategy.IsValid() {
		return fmt.Errorf("%w: strategy %q", ErrUnsupportedType, s.Strategy)
	}
	if s.Strategy == StrategyPathHistory && s.Inventory == "" {
		return fmt.Errorf("%w: path_history needs an inventory of exact files", ErrInvalidInput)
	}
	if !s.CountPolicy.IsValid() {
		return fmt.Errorf("%w: count policy %q", ErrUnsupportedType, s.CountPolicy)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidInput)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidInput)
	}
	if s.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidInput)
	}
	return nil
}
