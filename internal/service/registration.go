package service

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "armory/internal/errors"
	"armory/internal/model"
)

// birthDateLayouts are tried in order; the first successful parse wins.
var birthDateLayouts = []string{"2006-01-02", "02/01/2006", "01/02/2006"}

var registerValidator = newRegisterValidator()

func newRegisterValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterInput carries the raw registration fields.
type RegisterInput struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FullName        string `json:"full_name" validate:"required"`
	Rank            string `json:"rank" validate:"required"`
	Unit            string `json:"unit" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,number"`
	BirthDate       string `json:"birth_date"`
	Role            string `json:"role"`
	IDCode          string `json:"id_code"`
	IDType          string `json:"id_type"`
}

// registration is RegisterInput after it passed validation.
type registration struct {
	RegisterInput
	role      model.Role
	birthDate *time.Time
}

// Validate checks every field before anything is persisted and reports
// all rejected fields at once.
func (in RegisterInput) Validate() (*registration, error) {
	verr := apperrors.NewValidationError()

	if err := registerValidator.Struct(in); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				verr.Add(fe.Field(), fieldMessage(fe))
			}
		} else {
			return nil, err
		}
	}

	if in.Password != in.ConfirmPassword {
		verr.Add("confirm_password", "Passwords do not match")
	}

	role := model.RoleCivilianEmployee
	if in.Role != "" {
		parsed, err := model.ParseRole(in.Role)
		if err != nil {
			verr.Add("role", "Role must be one of: "+roleList())
		}
		role = parsed
	}

	var birthDate *time.Time
	if in.BirthDate != "" {
		parsed, ok := parseBirthDate(in.BirthDate)
		if !ok {
			verr.Add("birth_date", "Invalid date format. Use YYYY-MM-DD, DD/MM/YYYY or MM/DD/YYYY")
		}
		birthDate = parsed
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return &registration{RegisterInput: in, role: role, birthDate: birthDate}, nil
}

func parseBirthDate(value string) (*time.Time, bool) {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return humanize(fe.Field()) + " is required"
	case "email":
		return "Enter a valid email address"
	case "number":
		return "Phone number should contain only digits"
	default:
		return humanize(fe.Field()) + " is invalid"
	}
}

// humanize turns full_name into "Full Name".
func humanize(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

func roleList() string {
	names := make([]string, len(model.Roles))
	for i, r := range model.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
