package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotelier/pkg/logger"
	"hotelier/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("calendardate", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendardate' validator",
			"error", err,
		)
	}

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

// validateCalendarDate accepts strict YYYY-MM-DD strings only.
func validateCalendarDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	_, err := model.ParseDate(s)
	return err == nil
}

func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !reservation.CheckIn.Before(reservation.CheckOut) {
		return ValidationErrors{
			ValidationError{
				Field:   "CheckOut",
				Message: "check_out must be after check_in",
			},
		}
	}

	if reservation.IsWalkIn() && reservation.GuestName == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "GuestName",
				Message: "guest_name is required for walk-in reservations",
			},
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !update.CheckIn.IsZero() && !update.CheckOut.IsZero() {
		if !update.CheckIn.Before(update.CheckOut) {
			return ValidationErrors{
				ValidationError{
					Field:   "CheckOut",
					Message: "check_out must be after check_in",
				},
			}
		}
	}

	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "calendardate":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
