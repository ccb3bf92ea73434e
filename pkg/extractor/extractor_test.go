package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name:    "clean array",
			content: `["beer brewing","fermentation"]`,
			want:    []string{"beer brewing", "fermentation"},
		},
		{
			name:    "surrounding whitespace",
			content: "  [\"hops\"]\n",
			want:    []string{"hops"},
		},
		{
			name:    "malformed but repairable",
			content: `["beer brewing", "yeast",]`,
			want:    []string{"beer brewing", "yeast"},
		},
		{
			name:    "single quotes repaired",
			content: `['malt']`,
			want:    []string{"malt"},
		},
		{
			name:    "blank entries dropped",
			content: `["", "  ", "wort"]`,
			want:    []string{"wort"},
		},
		{
			name:    "not a list at all",
			content: `I could not find any entities.`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEntityList(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
