package handlers

import (
	"regexp"

	"github.com/geocoder89/clinicdesk/internal/domain/appointment"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{0,31}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators adds the isodate, slot and phone tags used by request structs.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return appointment.ValidDate(fl.Field().String())
	})
	_ = v.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
		return appointment.ValidSlot(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}
