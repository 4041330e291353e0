package models

import (
	"fmt"
	"strings"
)

// Category is the canonical set of catalog sections. Earlier revisions of
// the site used inconsistent spellings ("Multipads", "midi", "audio-beats");
// CanonicalCategory folds those into this enumeration.
type Category string

const (
	CategoryStyles     Category = "styles"
	CategoryVoices     Category = "voices"
	CategoryMultipads  Category = "multipads"
	CategoryMidifiles  Category = "midifiles"
	CategoryAudiobeats Category = "audiobeats"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryStyles,
		CategoryVoices,
		CategoryMultipads,
		CategoryMidifiles,
		CategoryAudiobeats,
	}
}

var categoryAliases = map[string]Category{
	"styles":      CategoryStyles,
	"style":       CategoryStyles,
	"voices":      CategoryVoices,
	"voice":       CategoryVoices,
	"multipads":   CategoryMultipads,
	"multipad":    CategoryMultipads,
	"midifiles":   CategoryMidifiles,
	"midi":        CategoryMidifiles,
	"midi-files":  CategoryMidifiles,
	"audiobeats":  CategoryAudiobeats,
	"audio-beats": CategoryAudiobeats,
	"audiobeat":   CategoryAudiobeats,
}

// CanonicalCategory normalizes a user-supplied category name, accepting the
// historical spellings, and rejects anything outside the enumeration.
func CanonicalCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

func (c Category) String() string {
	return string(c)
}
