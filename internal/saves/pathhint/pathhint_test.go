package pathhint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"saveedit/internal/savefile"
)

func TestSuggestions(t *testing.T) {
	t.Run("auto returns all hints", func(t *testing.T) {
		all := Suggestions(savefile.PlatformAuto)
		assert.Len(t, all, len(hints))
	})

	t.Run("filters by platform", func(t *testing.T) {
		for _, h := range Suggestions(savefile.PlatformEpic) {
			assert.Equal(t, savefile.PlatformEpic, h.Platform)
		}
		assert.NotEmpty(t, Suggestions(savefile.PlatformEpic))
		assert.NotEmpty(t, Suggestions(savefile.PlatformSteam))
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		first := Suggestions(savefile.PlatformAuto)
		first[0].Path = "mutated"
		assert.NotEqual(t, "mutated", hints[0].Path)
	})
}
