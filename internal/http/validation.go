package http

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/readingcenter/internal/entities"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator and
// makes unknown JSON fields a binding error. It is safe to call repeatedly.
//
//	slot        morning or afternoon
//	isodate     a YYYY-MM-DD calendar date
//	bookstatus  available, fully-reserved or maintenance
//	userrole    admin, staff or member
func RegisterValidators() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		mustRegister(v, "slot", func(fl validator.FieldLevel) bool {
			return entities.Slot(fl.Field().String()).Valid()
		})
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(entities.DateLayout, fl.Field().String())
			return err == nil
		})
		mustRegister(v, "bookstatus", func(fl validator.FieldLevel) bool {
			return entities.BookStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "userrole", func(fl validator.FieldLevel) bool {
			return entities.UserRole(fl.Field().String()).Valid()
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("register validation " + tag + ": " + err.Error())
	}
}

// jsonFieldName reports fields by their JSON name in validation errors.
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// validationDetails flattens a binding error into field -> rule pairs. Errors
// that are not per-field (malformed JSON, unknown fields) yield a single
// "body" entry.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return details
	}
	return map[string]string{"body": err.Error()}
}
