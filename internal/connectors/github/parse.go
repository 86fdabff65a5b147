package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

// maxPayload bounds how much of an unexpected body is kept for diagnostics.
const maxPayload = 512

// ParseCommitList decodes a commits list page into references, in API order.
// Entries without a sha are kept with an empty SHA so the caller can count them.
func ParseCommitList(raw []byte) ([]domain.CommitRef, error) {
	entries, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.CommitRef, 0, len(entries))
	for _, entry := range entries {
		refs = append(refs, domain.CommitRef{SHA: extractSHA(entry)})
	}
	return refs, nil
}

// ParseCommitDetail decodes a single commit response. Each field is extracted
// independently: a missing or malformed author, date or file entry leaves only
// that field empty. A body without a top-level commit object is an error.
func ParseCommitDetail(raw []byte) (*domain.CommitDetail, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoCommitObject, truncate(raw))
	}

	commit, ok := top["commit"]
	if !ok || !isObject(commit) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoCommitObject, apiMessage(top))
	}

	return &domain.CommitDetail{
		SHA:          extractSHA(raw),
		AuthorName:   extractAuthorName(commit),
		AuthorLogin:  extractLogin(top["author"]),
		Timestamp:    extractDate(commit),
		ChangedPaths: extractFiles(top["files"]),
	}, nil
}

// ParsePathHistory decodes a commits?path= page. The listed commits carry
// author data but no file list, so path becomes their only changed path.
func ParsePathHistory(raw []byte, path string) ([]domain.CommitDetail, error) {
	entries, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	details := make([]domain.CommitDetail, 0, len(entries))
	for _, entry := range entries {
		var top map[string]json.RawMessage
		if json.Unmarshal(entry, &top) != nil {
			continue
		}
		commit := top["commit"]
		details = append(details, domain.CommitDetail{
			SHA:          extractSHA(entry),
			AuthorName:   extractAuthorName(commit),
			AuthorLogin:  extractLogin(top["author"]),
			Timestamp:    extractDate(commit),
			ChangedPaths: []string{path},
		})
	}
	return details, nil
}

// decodeArray splits a JSON array body into its elements. Any other body is
// reported as ErrMalformedPage with the payload attached.
func decodeArray(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedPage, truncate(raw))
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedPage, truncate(raw))
	}
	return entries, nil
}

func extractSHA(raw json.RawMessage) string {
	var v struct {
		SHA *string `json:"sha"`
	}
	if json.Unmarshal(raw, &v) != nil || v.SHA == nil {
		return ""
	}
	return *v.SHA
}

func extractAuthorName(commit json.RawMessage) string {
	var v struct {
		Author *struct {
			Name *string `json:"name"`
		} `json:"author"`
	}
	if json.Unmarshal(commit, &v) != nil || v.Author == nil || v.Author.Name == nil {
		return ""
	}
	return *v.Author.Name
}

func extractDate(commit json.RawMessage) time.Time {
	var v struct {
		Author *struct {
			Date *gh.Timestamp `json:"date"`
		} `json:"author"`
	}
	if json.Unmarshal(commit, &v) != nil || v.Author == nil || v.Author.Date == nil {
		return time.Time{}
	}
	return v.Author.Date.UTC()
}

func extractLogin(author json.RawMessage) string {
	if len(author) == 0 {
		return ""
	}
	var user *gh.User
	_ = json.Unmarshal(author, &user)
	return user.GetLogin()
}

func extractFiles(files json.RawMessage) []string {
	if len(files) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if json.Unmarshal(files, &entries) != nil {
		return nil
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		var file gh.CommitFile
		// A type error elsewhere in the element still fills Filename.
		_ = json.Unmarshal(entry, &file)
		if name := file.GetFilename(); name != "" {
			paths = append(paths, name)
		}
	}
	return paths
}

func apiMessage(top map[string]json.RawMessage) string {
	var msg string
	if raw, ok := top["message"]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
		return msg
	}
	return "unknown error"
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func truncate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxPayload {
		return s[:maxPayload] + "..."
	}
	return s
}
