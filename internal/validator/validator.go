package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	id_translations "github.com/go-playground/validator/v10/translations/id"

	"github.com/stemsi/jadwal-backend/internal/model"
)

// trans is the singleton Indonesian translator for validation errors.
var trans ut.Translator

// Setup registers the validator with Indonesian translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		idLocale := id.New()
		uni := ut.New(idLocale, idLocale)
		trans, _ = uni.GetTranslator("id")
		id_translations.RegisterDefaultTranslations(v, trans)

		registerCustom(v)
	}
}

// registerCustom adds the timetable-specific tags and their messages.
func registerCustom(v *govalidator.Validate) {
	_ = v.RegisterValidation("timeofday", func(fl govalidator.FieldLevel) bool {
		_, err := model.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("dayofweek", func(fl govalidator.FieldLevel) bool {
		return model.DayOfWeek(strings.ToUpper(fl.Field().String())).Valid()
	})
	_ = v.RegisterValidation("permission", func(fl govalidator.FieldLevel) bool {
		return model.IsKnownPermission(fl.Field().String())
	})

	custom := map[string]string{
		"timeofday":  "{0} harus berupa jam dengan format HH:MM",
		"dayofweek":  "{0} harus salah satu dari MONDAY, TUESDAY, WEDNESDAY, THURSDAY, FRIDAY, SATURDAY, SUNDAY",
		"permission": "{0} berisi kode permission yang tidak dikenal",
	}
	for tag, msg := range custom {
		tag, msg := tag, msg
		_ = v.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, msg, true) },
			func(ut ut.Translator, fe govalidator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		)
	}
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Struct validates an already-decoded value with the same rules and
// messages as Bind. Used for payloads that do not arrive as a request body,
// such as WebSocket frames.
func Struct(v interface{}) map[string]string {
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
