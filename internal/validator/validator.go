// Package validator wraps go-playground/validator with English messages keyed by
// the field's json or env tag.
package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once     sync.Once
	validate *govalidator.Validate
	trans    ut.Translator
)

// FieldErrors maps field name to a human-readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e[name])
	}
	return strings.Join(parts, "; ")
}

func setup() {
	validate = govalidator.New(govalidator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"env", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)
}

// Struct validates dst and returns FieldErrors for tag violations.
func Struct(dst any) error {
	once.Do(setup)

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(FieldErrors, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}
	return err
}
