package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslationsLocalize(t *testing.T) {
	tr := Translations{
		"ar": {Title: "الجبر", Description: "مقدمة"},
		"en": {Title: "Algebra"},
	}

	title, desc := tr.Localize("ar", "Algèbre", "Introduction")
	assert.Equal(t, "الجبر", title)
	assert.Equal(t, "مقدمة", desc)

	title, desc = tr.Localize("en", "Algèbre", "Introduction")
	assert.Equal(t, "Algebra", title)
	assert.Equal(t, "Introduction", desc, "missing field falls back")

	title, _ = Translations(nil).Localize("fr", "Algèbre", "")
	assert.Equal(t, "Algèbre", title)
}

func TestHasAchievement(t *testing.T) {
	s := GamificationState{Achievements: []UnlockedAchievement{{ID: "first_steps"}}}
	assert.True(t, s.HasAchievement("first_steps"))
	assert.False(t, s.HasAchievement("streak_3"))
}
