package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag  = "notblank"
	bcryptLenTag = "bcryptlen"
)

// bcrypt ignores input past 72 bytes and newer versions reject it outright.
const bcryptMaxBytes = 72

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// エラーには Go のフィールド名ではなく JSON タグ名を使う
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " is required"
		},
	)

	_ = validate.RegisterValidation(bcryptLenTag, bcryptLenValidation)
	_ = validate.RegisterTranslation(bcryptLenTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " must be at most 72 bytes"
		},
	)
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func bcryptLenValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return len(str) <= bcryptMaxBytes
	}
	return false
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields"`
}

// validateRequest validates v and writes a 400 with the offending fields on failure.
func validateRequest(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "validation_failed")
		return false
	}
	resp := validationErrorResponse{Error: "validation_failed", Fields: make([]fieldError, 0, len(verrs))}
	for _, fe := range verrs {
		resp.Fields = append(resp.Fields, fieldError{Field: fe.Field(), Message: fe.Translate(translator)})
	}
	writeJSON(w, http.StatusBadRequest, resp)
	return false
}
