package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  QueryKind
	}{
		{"http://example.org/entity/beer-brewing", Identifier},
		{"https://purl.org/stuff/ragno/unit-42", Identifier},
		{"urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", Identifier},
		{"what is beer brewing", FreeText},
		{"beer", FreeText},
		{"", FreeText},
		{"   ", FreeText},
		{"http://example.org/with space", FreeText},
		{"not-a-scheme/path", FreeText},
		{"kafka vs rabbitmq: which broker?", FreeText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}
