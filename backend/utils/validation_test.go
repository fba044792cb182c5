package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Username string `json:"username" validate:"required,alphanum_,min=3"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Kind     string `json:"kind" validate:"omitempty,oneof=quiz coding theory"`
}

func TestValidatorStruct(t *testing.T) {
	v := NewValidator()

	assert.Nil(t, v.Struct(sample{Username: "amina_1", Slug: "go-basics", Kind: "quiz"}))

	fields := v.Struct(sample{Username: "", Slug: "Go Basics", Kind: "essay"})
	assert.Equal(t, "this field is required", fields["username"])
	assert.Contains(t, fields["slug"], "lowercase")
	assert.Contains(t, fields, "kind")

	fields = v.Struct(sample{Username: "bad name"})
	assert.Equal(t, alphaNumUnderText, fields["username"])
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, "ar", MatchLanguage("ar", "en-US", "fr"))
	assert.Equal(t, "en", MatchLanguage("", "en-GB,en;q=0.9", "fr"))
	assert.Equal(t, "ar", MatchLanguage("", "ar-MA", "fr"))
	assert.Equal(t, "fr", MatchLanguage("xx", "", "fr"))
	assert.Equal(t, "en", MatchLanguage("", "", "en"))
	assert.Equal(t, "fr", MatchLanguage("", "", "de"))
}
