package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dshills/wordevents/internal/dictionary"
)

var (
	validatorOnce  sync.Once
	validate       *validator.Validate
	translator     ut.Translator
	errValidatorUp error
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	v := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, nil, fmt.Errorf("registering default translations: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("file", isFileReadable); err != nil {
		return nil, nil, fmt.Errorf("registering file validation: %w", err)
	}
	if err := v.RegisterTranslation("file", trans, func(ut ut.Translator) error {
		return ut.Add("file", "{0} must be an existing and readable file", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("file", fe.Field())
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("registering file translation: %w", err)
	}

	return v, trans, nil
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// Validate checks cfg. It returns the joined *ValidationError values of
// every failing setting.
func Validate(cfg Config) error {
	validatorOnce.Do(func() {
		validate, translator, errValidatorUp = newValidator()
	})
	if errValidatorUp != nil {
		return errValidatorUp
	}

	var errs []error
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validating config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, &ValidationError{
				Path:    settingPath(fe.Namespace()),
				Message: fe.Translate(translator),
				Value:   fe.Value(),
				Code:    codeForTag(fe.Tag()),
			})
		}
	}

	for i, w := range cfg.Words {
		errs = append(errs, validateWord(i, w)...)
	}

	return errors.Join(errs...)
}

// validateWord checks what struct tags cannot: exactly one of word and
// pattern, and that the pattern compiles.
func validateWord(i int, w WordConfig) []error {
	path := fmt.Sprintf("words[%d]", i)

	switch {
	case w.Word != nil && w.Pattern != "":
		return []error{&ValidationError{
			Path:    path,
			Message: "word and pattern are mutually exclusive",
			Value:   w.Pattern,
			Code:    ErrCodeConflict,
		}}
	case w.Word == nil && w.Pattern == "":
		return []error{&ValidationError{
			Path:    path,
			Message: "one of word or pattern is required",
			Code:    ErrCodeRequiredMissing,
		}}
	case w.Word == nil:
		if _, err := dictionary.Pattern(w.Pattern); err != nil {
			return []error{&ValidationError{
				Path:    path + ".pattern",
				Message: err.Error(),
				Value:   w.Pattern,
				Code:    ErrCodePatternInvalid,
			}}
		}
	}
	return nil
}

// settingPath turns "Config.engine.accept" into "engine.accept".
func settingPath(namespace string) string {
	_, rest, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return rest
}

func codeForTag(tag string) ValidationErrorCode {
	switch tag {
	case "oneof":
		return ErrCodeInvalidEnum
	case "gt", "gte", "lt", "lte":
		return ErrCodeOutOfRange
	case "required", "required_if":
		return ErrCodeRequiredMissing
	case "file":
		return ErrCodeFileUnreadable
	default:
		return ErrCodeInvalid
	}
}
