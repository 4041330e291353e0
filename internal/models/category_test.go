package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"styles", CategoryStyles},
		{"Styles", CategoryStyles},
		{"voices", CategoryVoices},
		{"Multipads", CategoryMultipads},
		{"midifiles", CategoryMidifiles},
		{"midi", CategoryMidifiles},
		{"audiobeats", CategoryAudiobeats},
		{"audio-beats", CategoryAudiobeats},
		{"  AUDIOBEATS  ", CategoryAudiobeats},
	}
	for _, tt := range tests {
		got, err := CanonicalCategory(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestCanonicalCategoryRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "drums", "style s", "uploads"} {
		_, err := CanonicalCategory(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestCategoriesEnumeration(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 5)
	for _, c := range cats {
		got, err := CanonicalCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}
