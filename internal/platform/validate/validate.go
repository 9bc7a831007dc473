// Package validate holds a singleton validator with english translations.
// It backs configuration artifact checks (seating charts), not HTTP payloads
package validate

import (
	"reflect"
	"strings"
	"sync"

	perr "deskwatch/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// UT aliases ut.Translator
type UT = ut.Translator

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *Svc
)

// Init initializes the singleton validator with english translations and json tag names
func Init() *Svc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		vSvc = &Svc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Struct validates v and returns a Validation error with translated,
// field-tagged messages; nil when v passes
func Struct(v any) error {
	s := Init()
	err := s.Validator.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return perr.Wrap(err, perr.ErrorCodeValidation, "validate")
	}
	msgs := make([]string, 0, len(verrs))
	field := ""
	for _, fe := range verrs {
		if field == "" {
			field = fe.Field()
		}
		msgs = append(msgs, fe.Translate(s.Translator))
	}
	return perr.WithField(
		perr.Newf(perr.ErrorCodeValidation, "%s", strings.Join(msgs, "; ")),
		field,
	)
}
