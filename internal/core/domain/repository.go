package domain

import (
	"fmt"
	"strings"
)

// Repository identifies a crawl target in owner/name form.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository parses "owner/name". Surrounding whitespace and a trailing
// ".git" are tolerated; anything else returns ErrInvalidRepository.
func ParseRepository(s string) (Repository, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".git")
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Repository{}, fmt.Errorf("%w: %q is not owner/name", ErrInvalidRepository, s)
	}
	owner, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if owner == "" || name == "" {
		return Repository{}, fmt.Errorf("%w: %q is not owner/name", ErrInvalidRepository, s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether the repository is unset.
func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// Validate checks that both owner and name are present.
func (r Repository) Validate() error {
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("%w: owner and name are required", ErrInvalidRepository)
	}
	return nil
}

func (r Repository) String() string {
	return r.FullName()
}
