package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/touchminer/internal/core/domain"
	"github.com/custodia-labs/touchminer/internal/core/ports/driven"
	"github.com/custodia-labs/touchminer/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyRepository  = "repository"
	keyTokens      = "tokens"
	keyRotation    = "rotation"
	keyRequireAuth = "require_auth"
	keyPrefixes    = "prefixes"
	keyInventory   = "inventory"
	keyStrategy    = "strategy"
	keyCountPolicy = "count_policy"
	keyConcurrency = "concurrency"
	keyTimeout     = "timeout"
	keyRetries     = "retries"
	keyRate        = "rate"
	keyBaseURL     = "base_url"
	keyProbeStart  = "probe_start"
	keyCSV         = "output.csv"
	keyCountsCSV   = "output.counts_csv"
	keySQLiteDir   = "output.sqlite_dir"
	keyParquetDir  = "output.parquet_dir"
	keyMetricsFile = "metrics.textfile"
)

// Environment variables consulted after the config file.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvTokens     = "GITHUB_TOKENS"
	EnvToken      = "GITHUB_TOKEN"
	EnvRepository = "TOUCHMINER_REPOSITORY"
)

// SettingsService merges defaults, the config file and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get retrieves the merged settings. Unknown enum values are passed through
// so that MinerSettings.Validate can report them.
func (s *SettingsService) Get() (*domain.MinerSettings, error) {
	defaults := domain.DefaultMinerSettings()

	settings := &domain.MinerSettings{
		Repository:        s.configStore.GetString(keyRepository),
		Tokens:            cleanList(s.configStore.GetStringSlice(keyTokens)),
		Rotation:          ParseOrRaw(domain.ParseRotation, s.getString(keyRotation, string(defaults.Rotation))),
		RequireAuth:       s.getBool(keyRequireAuth, defaults.RequireAuth),
		Prefixes:          cleanList(s.configStore.GetStringSlice(keyPrefixes)),
		Inventory:         s.configStore.GetString(keyInventory),
		Strategy:          ParseOrRaw(domain.ParseStrategy, s.getString(keyStrategy, string(defaults.Strategy))),
		CountPolicy:       ParseOrRaw(domain.ParseCountPolicy, s.getString(keyCountPolicy, string(defaults.CountPolicy))),
		Concurrency:       s.getInt(keyConcurrency, defaults.Concurrency),
		Timeout:           s.getDuration(keyTimeout, defaults.Timeout),
		Retries:           s.getInt(keyRetries, defaults.Retries),
		RequestsPerSecond: s.configStore.GetFloat(keyRate),
		BaseURL:           s.configStore.GetString(keyBaseURL),
		ProbeStart:        s.getBool(keyProbeStart, defaults.ProbeStart),
		Output: domain.OutputSettings{
			CSV:        s.configStore.GetString(keyCSV),
			CountsCSV:  s.configStore.GetString(keyCountsCSV),
			SQLiteDir:  s.configStore.GetString(keySQLiteDir),
			ParquetDir: s.configStore.GetString(keyParquetDir),
		},
		MetricsTextfile: s.configStore.GetString(keyMetricsFile),
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overrides file values with GITHUB_TOKENS (or GITHUB_TOKEN) and
// TOUCHMINER_REPOSITORY.
func (s *SettingsService) applyEnv(settings *domain.MinerSettings) {
	if tokens := cleanList(strings.Split(s.getenv(EnvTokens), ",")); len(tokens) > 0 {
		settings.Tokens = tokens
	} else if token := strings.TrimSpace(s.getenv(EnvToken)); token != "" {
		settings.Tokens = []string{token}
	}
	if repo := strings.TrimSpace(s.getenv(EnvRepository)); repo != "" {
		settings.Repository = repo
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats a present zero as a real value so "retries = 0" disables retries.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts a Go duration string ("45s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	if str, ok := val.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d
		}
		if secs, err := strconv.ParseFloat(str, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
		return defaultVal
	}
	if secs := s.configStore.GetFloat(key); secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultVal
}

// ParseOrRaw normalises raw with parse ("per-commit" becomes "per_commit").
// A value parse rejects is returned unchanged for Validate to report.
func ParseOrRaw[T ~string](parse func(string) (T, error), raw string) T {
	if v, err := parse(raw); err == nil {
		return v
	}
	return T(raw)
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// settingKind is the TOML type a key is stored as.
type settingKind int

const (
	kindString settingKind = iota
	kindList
	kindInt
	kindBool
	kindFloat
	kindDuration
)

var settingKinds = map[string]settingKind{
	keyRepository:  kindString,
	keyTokens:      kindList,
	keyRotation:    kindString,
	keyRequireAuth: kindBool,
	keyPrefixes:    kindList,
	keyInventory:   kindString,
	keyStrategy:    kindString,
	keyCountPolicy: kindString,
	keyConcurrency: kindInt,
	keyTimeout:     kindDuration,
	keyRetries:     kindInt,
	keyRate:        kindFloat,
	keyBaseURL:     kindString,
	keyProbeStart:  kindBool,
	keyCSV:         kindString,
	keyCountsCSV:   kindString,
	keySQLiteDir:   kindString,
	keyParquetDir:  kindString,
	keyMetricsFile: kindString,
}

// Keys returns every settable config key in sorted order.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// SettingKeys returns every settable config key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for key := range settingKinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set parses raw as the type of key, checks it and persists it to the config store.
// Lists are comma-separated and enum spellings are normalised before storing.
func (s *SettingsService) Set(key, raw string) error {
	value, err := parseSetting(key, raw)
	if err != nil {
		return err
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Unset removes key from the config store so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingKinds[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	s.configStore.Delete(key)
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func parseSetting(key, raw string) (any, error) {
	kind, ok := settingKinds[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s needs a value (use unset to clear it)", domain.ErrInvalidInput, key)
	}

	switch kind {
	case kindList:
		items := cleanList(strings.Split(raw, ","))
		if len(items) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one value", domain.ErrInvalidInput, key)
		}
		return items, nil
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		if key == keyConcurrency && n < 1 {
			return nil, fmt.Errorf("%w: concurrency must be at least 1", domain.ErrInvalidInput)
		}
		if key == keyRetries && n < 0 {
			return nil, fmt.Errorf("%w: retries must not be negative", domain.ErrInvalidInput)
		}
		return int64(n), nil
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		return b, nil
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive duration such as 30s", domain.ErrInvalidInput, key)
		}
		return d.String(), nil
	}

	switch key {
	case keyRepository:
		repo, err := domain.ParseRepository(raw)
		if err != nil {
			return nil, err
		}
		return repo.String(), nil
	case keyRotation:
		r, err := domain.ParseRotation(raw)
		return string(r), err
	case keyStrategy:
		st, err := domain.ParseStrategy(raw)
		return string(st), err
	case keyCountPolicy:
		p, err := domain.ParseCountPolicy(raw)
		return string(p), err
	}
	return raw, nil
}
