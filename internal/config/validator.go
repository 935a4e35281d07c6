package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("bundlename", isBundleName); err != nil {
		return nil, nil, fmt.Errorf("failed to register bundlename validation: %w", err)
	}
	if err := validate.RegisterTranslation("bundlename", trans, func(ut ut.Translator) error {
		return ut.Add("bundlename", "{0} must be a bundle base name without path separators or underscores", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("bundlename", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register bundlename translation: %w", err)
	}

	return validate, trans, nil
}

// isBundleName reports whether the value can be used as the base name of
// "<name>_<lang>.properties" resources.
func isBundleName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\_`)
}
