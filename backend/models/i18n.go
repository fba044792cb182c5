package models

// Translation of a title/description pair.
type Translation struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Translations maps a language code (ar, fr, en) to its text.
type Translations map[string]Translation

// Localize returns the title and description for lang, falling back to the
// default-language columns field by field.
func (t Translations) Localize(lang, title, description string) (string, string) {
	tr, ok := t[lang]
	if !ok {
		return title, description
	}
	if tr.Title != "" {
		title = tr.Title
	}
	if tr.Description != "" {
		description = tr.Description
	}
	return title, description
}
