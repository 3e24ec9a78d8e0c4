package checkout

import (
	"reflect"
	"strings"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/go-playground/validator/v10"
)

// Form is the shipping form collected before submission.
type Form struct {
	AuthorName  string `json:"author_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Address     string `json:"address" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Notes       string `json:"notes"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Normalize trims every field.
func (f Form) Normalize() Form {
	return Form{
		AuthorName:  strings.TrimSpace(f.AuthorName),
		Email:       strings.TrimSpace(f.Email),
		Title:       strings.TrimSpace(f.Title),
		PostalCode:  strings.TrimSpace(f.PostalCode),
		Address:     strings.TrimSpace(f.Address),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Notes:       strings.TrimSpace(f.Notes),
	}
}

// Validate returns a validation error whose details map json field names to messages.
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid checkout form")
	}
	details := map[string]string{}
	for _, fe := range errs {
		details[fe.Field()] = message(fe)
	}
	return apperr.New(apperr.CodeValidation, "invalid checkout form").WithDetails(details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
