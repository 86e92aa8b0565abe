package vtuber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandGroups(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "alias expands to concrete tags",
			input: []string{"hololive"},
			want:  []string{"hololive", "hololivecn", "hololiveen", "hololiveid", "hololivejp"},
		},
		{
			name:  "holopro covers holostars too",
			input: []string{"holopro"},
			want:  []string{"hololive", "hololivecn", "hololiveen", "hololiveid", "hololivejp", "holostars"},
		},
		{
			name:  "unknown name passes through",
			input: []string{"somegroup"},
			want:  []string{"somegroup"},
		},
		{
			name:  "overlapping aliases dedupe",
			input: []string{"hololive", "hololivejp"},
			want:  []string{"hololive", "hololivecn", "hololiveen", "hololiveid", "hololivejp"},
		},
		{
			name:  "empty input stays empty",
			input: nil,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandGroups(tt.input))
		})
	}
}

func TestExpandGroupsIdempotent(t *testing.T) {
	once := ExpandGroups([]string{"nijisanji"})
	twice := ExpandGroups([]string{"nijisanji", "nijisanji"})
	assert.Equal(t, once, twice)

	// Expanding an already-expanded set is a no-op for concrete tags
	// that map to themselves.
	assert.Equal(t, []string{"virtuareal"}, ExpandGroups([]string{"virtuareal"}))
}
