package validate

import (
	"regexp"

	"qanda-service/internal/models"

	"github.com/go-playground/validator/v10"
)

var hhmm = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// New returns a validator that also knows the subject and hhmm tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
		return models.Subject(fl.Field().String()).Valid()
	})

	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmm.MatchString(fl.Field().String())
	})

	return v
}
