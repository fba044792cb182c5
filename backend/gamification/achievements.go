package gamification

import "github.com/katuripu/katuripu/backend/models"

// Achievement is a badge unlocked once when its condition first holds.
type Achievement struct {
	ID     string            `json:"id"`
	Titles map[string]string `json:"titles"`
	check  func(models.GamificationState) bool
}

// Title returns the badge title in lang, English otherwise.
func (a Achievement) Title(lang string) string {
	if t, ok := a.Titles[lang]; ok {
		return t
	}
	return a.Titles["en"]
}

func exercises(n int) func(models.GamificationState) bool {
	return func(s models.GamificationState) bool { return s.ExercisesCompleted >= n }
}

func streak(n int) func(models.GamificationState) bool {
	return func(s models.GamificationState) bool { return s.Streak >= n }
}

func level(n int) func(models.GamificationState) bool {
	return func(s models.GamificationState) bool { return s.Level >= n }
}

// Catalog is evaluated in order; unlock order follows it.
var Catalog = []Achievement{
	{ID: "first_steps", Titles: map[string]string{"en": "First steps", "fr": "Premiers pas", "ar": "الخطوات الأولى"}, check: exercises(1)},
	{ID: "dedicated_learner", Titles: map[string]string{"en": "Dedicated learner", "fr": "Apprenant assidu", "ar": "متعلم مثابر"}, check: exercises(10)},
	{ID: "exercise_master", Titles: map[string]string{"en": "Exercise master", "fr": "Maître des exercices", "ar": "سيد التمارين"}, check: exercises(50)},
	{ID: "streak_3", Titles: map[string]string{"en": "3-day streak", "fr": "Série de 3 jours", "ar": "سلسلة 3 أيام"}, check: streak(3)},
	{ID: "streak_7", Titles: map[string]string{"en": "7-day streak", "fr": "Série de 7 jours", "ar": "سلسلة 7 أيام"}, check: streak(7)},
	{ID: "streak_30", Titles: map[string]string{"en": "30-day streak", "fr": "Série de 30 jours", "ar": "سلسلة 30 يومًا"}, check: streak(30)},
	{ID: "level_5", Titles: map[string]string{"en": "Level 5", "fr": "Niveau 5", "ar": "المستوى 5"}, check: level(5)},
	{ID: "level_10", Titles: map[string]string{"en": "Level 10", "fr": "Niveau 10", "ar": "المستوى 10"}, check: level(10)},
	{ID: "roadmap_finisher", Titles: map[string]string{"en": "Roadmap finisher", "fr": "Parcours terminé", "ar": "أنهيت المسار"}, check: func(s models.GamificationState) bool {
		return s.RoadmapsCompleted >= 1
	}},
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
