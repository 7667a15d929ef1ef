package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lanehart/authd/internal/domain"
	"github.com/lanehart/authd/internal/password"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SignupRequest is the POST /signup body.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=128"`
	Password string `json:"password" validate:"required"`
}

func (r *SignupRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	if err := password.Validate(r.Password); err != nil {
		return err
	}
	return nil
}

// LoginRequest is the POST /login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validate.Struct(r); err != nil {
		// Malformed credentials never reveal which part was wrong.
		return domain.ErrInvalidCredentials()
	}
	return nil
}

// ForgotPasswordRequest is the POST /forgot-password body.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// ResetPasswordRequest is the POST /reset-password/{token} body.
// Password strength is checked by the service before the token is
// consumed, so only presence is enforced here.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

func (r *ResetPasswordRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// PromoteRequest is the POST /promote body.
type PromoteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *PromoteRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			return domain.ErrMissingField(field)
		}
		return domain.ErrInvalidField(field, "failed "+fe.Tag()+" check")
	}
	return domain.ErrInvalidJSON(err)
}
