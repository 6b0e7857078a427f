package users

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/gatekeep/gatekeep/internal/shared"
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{7,14}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	return v
}

func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: invalid %s", shared.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", shared.ErrValidation, err)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeMobile(mobile string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(mobile))
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrUserNotFound)
}
