package domain

import (
	"fmt"
	"sort"
	"strings"
)

// MatchMode selects how a TrackedPathSet tests a changed path.
type MatchMode string

const (
	// MatchExact requires the changed path to equal a member.
	MatchExact MatchMode = "exact"
	// MatchPrefix requires the changed path to start with a member.
	MatchPrefix MatchMode = "prefix"
)

// TrackedPathSet is the immutable set of paths or prefixes considered source files.
type TrackedPathSet struct {
	mode     MatchMode
	exact    map[string]struct{}
	prefixes []string
}

// NewExactPathSet builds a set that matches whole file paths.
func NewExactPathSet(paths []string) (*TrackedPathSet, error) {
	exact := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		exact[p] = struct{}{}
	}
	if len(exact) == 0 {
		return nil, fmt.Errorf("%w: tracked file set is empty", ErrInvalidInput)
	}
	return &TrackedPathSet{mode: MatchExact, exact: exact}, nil
}

// NewPrefixPathSet builds a set that matches any path starting with a member.
func NewPrefixPathSet(prefixes []string) (*TrackedPathSet, error) {
	seen := make(map[string]struct{}, len(prefixes))
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: tracked prefix set is empty", ErrInvalidInput)
	}
	sort.Strings(out)
	return &TrackedPathSet{mode: MatchPrefix, prefixes: out}, nil
}

// Mode returns the match mode.
func (s *TrackedPathSet) Mode() MatchMode {
	return s.mode
}

// Len returns the number of members.
func (s *TrackedPathSet) Len() int {
	if s.mode == MatchExact {
		return len(s.exact)
	}
	return len(s.prefixes)
}

// Match reports whether path is tracked.
func (s *TrackedPathSet) Match(path string) bool {
	if path == "" {
		return false
	}
	if s.mode == MatchExact {
		_, ok := s.exact[path]
		return ok
	}
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Members returns the paths or prefixes in sorted order.
func (s *TrackedPathSet) Members() []string {
	if s.mode == MatchPrefix {
		return append([]string(nil), s.prefixes...)
	}
	out := make([]string, 0, len(s.exact))
	for p := range s.exact {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
