package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"translation-history/internal/domain"
)

// MaxTextBytes is the largest UTF-8 payload accepted for translation.
const MaxTextBytes = 5000

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "notblank", notBlank)
		mustRegister(v, "maxtextbytes", maxTextBytes)
		mustRegister(v, "sourcelang", sourceLang)
		mustRegister(v, "targetlang", targetLang)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("usecase: register %s validation: %v", tag, err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func maxTextBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxTextBytes
}

func sourceLang(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	return code == domain.AutoDetect || domain.IsSupportedLanguage(code)
}

func targetLang(fl validator.FieldLevel) bool {
	return domain.IsSupportedLanguage(fl.Field().String())
}

// validateStruct runs tag validation and converts the first failure into a
// client-facing INVALID_INPUT error using describe.
func validateStruct(s any, describe func(validator.FieldError) *Error) *Error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newError(ErrorInvalidInput, "validation_error", "Invalid request", err)
	}
	return describe(verrs[0])
}
