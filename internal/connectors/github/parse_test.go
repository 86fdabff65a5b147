package github

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/touchminer/internal/core/domain"
)

func TestParseCommitDetail_FieldIsolation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantName  string
		wantLogin string
		wantTime  time.Time
		wantPaths []string
	}{
		{
			name:      "author account is null",
			body:      `{"commit":{"author":{"name":"Ada","date":"2020-02-02T10:00:00Z"}},"author":null,"files":[{"filename":"a.go"}]}`,
			wantName:  "Ada",
			wantTime:  time.Date(2020, 2, 2, 10, 0, 0, 0, time.UTC),
			wantPaths: []string{"a.go"},
		},
		{
			name:      "malformed date keeps other fields",
			body:      `{"commit":{"author":{"name":"Ada","date":"yesterday"}},"author":{"login":"ada"},"files":[{"filename":"a.go"}]}`,
			wantName:  "Ada",
			wantLogin: "ada",
			wantPaths: []string{"a.go"},
		},
		{
			name:      "missing files list",
			body:      `{"commit":{"author":{"name":"Ada"}},"author":{"login":"ada"}}`,
			wantName:  "Ada",
			wantLogin: "ada",
		},
		{
			name:      "bad file element drops only that element",
			body:      `{"commit":{},"files":[{"filename":"a.go"},42,{"status":"added"},{"filename":"b.go","additions":"many"}]}`,
			wantPaths: []string{"a.go", "b.go"},
		},
		{
			name:     "files is not a list",
			body:     `{"commit":{"author":{"name":"Ada"}},"files":"nope"}`,
			wantName: "Ada",
		},
		{
			name:      "author is not an object",
			body:      `{"commit":{"author":"Ada"},"author":"ada","files":[{"filename":"x"}]}`,
			wantPaths: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := ParseCommitDetail([]byte(tt.body))

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, detail.AuthorName)
			assert.Equal(t, tt.wantLogin, detail.AuthorLogin)
			assert.Equal(t, tt.wantTime, detail.Timestamp)
			if tt.wantPaths == nil {
				assert.Empty(t, detail.ChangedPaths)
			} else {
				assert.Equal(t, tt.wantPaths, detail.ChangedPaths)
			}
		})
	}
}

func TestParseCommitDetail_NoCommitObject(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "api message", body: `{"message":"Server Error"}`, wantMsg: "Server Error"},
		{name: "no message", body: `{"sha":"abc"}`, wantMsg: "unknown error"},
		{name: "commit is null", body: `{"commit":null,"message":"gone"}`, wantMsg: "gone"},
		{name: "not an object", body: `[1,2]`, wantMsg: "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommitDetail([]byte(tt.body))

			require.ErrorIs(t, err, domain.ErrNoCommitObject)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseCommitList(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		refs, err := ParseCommitList([]byte(` [{"sha":"a"},{"sha":"b"}] `))

		require.NoError(t, err)
		assert.Equal(t, []domain.CommitRef{{SHA: "a"}, {SHA: "b"}}, refs)
	})

	t.Run("object is malformed", func(t *testing.T) {
		_, err := ParseCommitList([]byte(`{"message":"Bad credentials"}`))

		require.ErrorIs(t, err, domain.ErrMalformedPage)
		assert.Contains(t, err.Error(), "Bad credentials")
	})

	t.Run("empty body is malformed", func(t *testing.T) {
		_, err := ParseCommitList(nil)

		require.ErrorIs(t, err, domain.ErrMalformedPage)
		assert.Contains(t, err.Error(), "empty response body")
	})

	t.Run("long payload is truncated", func(t *testing.T) {
		body := make([]byte, 2000)
		for i := range body {
			body[i] = 'x'
		}

		_, err := ParseCommitList(body)

		require.Error(t, err)
		assert.Less(t, len(err.Error()), 600)
	})
}

func TestLastPageNumber(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{
			name:   "next and last",
			header: `<https://api.github.com/repositories/1/commits?page=2>; rel="next", <https://api.github.com/repositories/1/commits?page=34>; rel="last"`,
			want:   34,
		},
		{name: "no header", header: "", want: 0},
		{name: "no last", header: `<https://api.github.com/x?page=2>; rel="next"`, want: 0},
		{name: "last without page", header: `<https://api.github.com/x>; rel="last"`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastPageNumber(tt.header))
		})
	}
}
