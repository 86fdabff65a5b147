package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input   string
		want    Repository
		wantErr bool
	}{
		{input: "scottyab/rootbeer", want: Repository{Owner: "scottyab", Name: "rootbeer"}},
		{input: "  scottyab/rootbeer.git ", want: Repository{Owner: "scottyab", Name: "rootbeer"}},
		{input: "", wantErr: true},
		{input: "rootbeer", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "/rootbeer", wantErr: true},
		{input: "scottyab/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepository(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepository)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_Methods(t *testing.T) {
	r := Repository{Owner: "acme", Name: "widgets"}

	assert.Equal(t, "acme/widgets", r.FullName())
	assert.Equal(t, "acme/widgets", r.String())
	assert.False(t, r.IsZero())
	assert.NoError(t, r.Validate())

	assert.True(t, Repository{}.IsZero())
	assert.ErrorIs(t, Repository{Owner: "acme"}.Validate(), ErrInvalidRepository)
}
