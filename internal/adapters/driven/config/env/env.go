// Package env reads dotenv files so that tokens can live outside the shell
// profile and the TOML config.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultFiles are consulted in order; earlier files win.
var DefaultFiles = []string{".env.local", ".env"}

// Loader resolves variables from the process environment first and then
// from dotenv files. It never mutates the process environment.
type Loader struct {
	files  []string
	vars   map[string]string
	loaded []string
}

// NewLoader creates a loader over files. With no files it uses DefaultFiles
// plus ~/.touchminer/.env.
func NewLoader(files ...string) *Loader {
	if len(files) == 0 {
		files = append([]string(nil), DefaultFiles...)
		if home, err := os.UserHomeDir(); err == nil {
			files = append(files, filepath.Join(home, ".touchminer", ".env"))
		}
	}
	return &Loader{files: files, vars: make(map[string]string)}
}

// Load reads every file that exists. Missing files are skipped; a file that
// exists but does not parse is an error.
func (l *Loader) Load() error {
	for _, file := range l.files {
		vars, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", file, err)
		}
		for k, v := range vars {
			if _, seen := l.vars[k]; !seen {
				l.vars[k] = v
			}
		}
		l.loaded = append(l.loaded, file)
	}
	return nil
}

// Loaded returns the files that were read.
func (l *Loader) Loaded() []string {
	return l.loaded
}

// Getenv returns the process value of key when set, else the dotenv value.
func (l *Loader) Getenv(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return l.vars[key]
}
