// Package validation declares the request schemas and checks payload shape
// before any side effect occurs.
//
// Each schema is a plain struct with `validate` tags, checked by
// go-playground/validator. Checking never panics and performs no I/O: the
// result is either nil (valid) or a field-error report mapping field names
// to human-readable messages, which handlers return verbatim as the 400 body.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignupInput is the schema for POST /signup.
//
// Minimums mirror the account rules: usernames are at least 3 characters,
// passwords at least 6, recovery questions at least 10 with a non-empty
// answer. At least one question is required so the pick-two recovery flow
// always has something to ask.
type SignupInput struct {
	Username      string          `json:"username"      validate:"required,min=3"`
	Password      string          `json:"password"      validate:"required,min=6"`
	AuthQuestions []QuestionInput `json:"authQuestions" validate:"required,min=1,dive"`
}

// QuestionInput is one question/answer pair inside a signup payload.
type QuestionInput struct {
	Question string `json:"question" validate:"required,min=10"`
	Answer   string `json:"answer"   validate:"required,min=1"`
}

// SigninInput is the schema for POST /signin-password — presence checks only;
// credential correctness is the service's job.
type SigninInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// validate is configured once; validator.Validate is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names so error keys match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Signup checks a signup payload. A nil result means the payload is valid.
func Signup(in *SignupInput) map[string][]string {
	return check(in)
}

// Signin checks a signin payload. A nil result means the payload is valid.
func Signin(in *SigninInput) map[string][]string {
	return check(in)
}

func check(v any) map[string][]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Non-schema failure (e.g. a nil pointer reached the validator).
		return map[string][]string{"payload": {"invalid payload"}}
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fieldPath(fe)
		fields[name] = append(fields[name], message(fe))
	}
	return fields
}

// fieldPath strips the root struct name from the error namespace, so a
// nested failure reports as "authQuestions[0].question" rather than
// "SignupInput.authQuestions[0].question".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// message renders a single constraint failure as user-facing text.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
