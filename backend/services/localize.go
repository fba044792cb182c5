package services

import "github.com/katuripu/katuripu/backend/models"

func localizeSubject(s *models.Subject, lang string) {
	s.Title, s.Description = s.I18n.Data().Localize(lang, s.Title, s.Description)
	for i := range s.Roadmaps {
		localizeRoadmap(&s.Roadmaps[i], lang)
	}
}

func localizeRoadmap(r *models.Roadmap, lang string) {
	r.Title, r.Description = r.I18n.Data().Localize(lang, r.Title, r.Description)
	if r.Subject != nil {
		localizeSubject(r.Subject, lang)
	}
	for i := range r.Nodes {
		localizeNode(&r.Nodes[i], lang)
	}
}

func localizeNode(n *models.RoadmapNode, lang string) {
	n.Title, n.Description = n.I18n.Data().Localize(lang, n.Title, n.Description)
	for i := range n.Exercises {
		if ex := n.Exercises[i].Exercise; ex != nil {
			localizeExercise(ex, lang)
			ex.Solution = ""
		}
	}
}

// Exercise translations carry the statement in Description.
func localizeExercise(e *models.Exercise, lang string) {
	e.Title, e.Content = e.I18n.Data().Localize(lang, e.Title, e.Content)
}
