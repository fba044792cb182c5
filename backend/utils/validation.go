package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)

	slugTag   = "slug"
	slugText  = "must contain only lowercase letters, digits and dashes"
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	requiredText = "this field is required"
)

// Validator validates request payloads and renders failures per JSON field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(alphaNumUnderTag, func(fl validator.FieldLevel) bool {
		return alphaNumUnderRegex.MatchString(fl.Field().String())
	})
	registerTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText, false)

	_ = validate.RegisterValidation(slugTag, func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	registerTranslation(validate, translator, slugTag, slugText, false)
	registerTranslation(validate, translator, "required", requiredText, true)

	return &Validator{validate: validate, translator: translator}
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct returns nil or a field -> message map.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(v.translator)
	}
	return fields
}
