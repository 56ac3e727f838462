package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks inbound shapes against their struct tags. Field names in
// reported issues use the json tag, matching what the client sent.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator. It is safe for concurrent use.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// DecodeLead reads a JSON object from r and returns the normalized Lead, or a
// *ValidationError describing why it was rejected.
func (v *Validator) DecodeLead(r io.Reader) (*Lead, error) {
	dec := json.NewDecoder(r)
	var lead Lead
	if err := dec.Decode(&lead); err != nil {
		return nil, &ValidationError{Issues: []FieldIssue{decodeIssue(err)}}
	}
	// Only whitespace may follow the object.
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Issues: []FieldIssue{trailingIssue(dec.InputOffset(), err)}}
	}
	lead.Normalize()
	if err := v.Struct(&lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Struct validates s and converts rule failures into a *ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	issues := make([]FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, ruleIssue(fe))
	}
	return &ValidationError{Issues: issues}
}

func ruleIssue(fe validator.FieldError) FieldIssue {
	issue := FieldIssue{Loc: []string{"body", fe.Field()}, Type: "value_error"}
	switch fe.Tag() {
	case "required":
		issue.Msg = "Field required"
		issue.Type = "missing"
	case "email":
		issue.Msg = "value is not a valid email address"
	default:
		issue.Msg = fmt.Sprintf("failed the %q rule", fe.Tag())
	}
	return issue
}

func trailingIssue(offset int64, err error) FieldIssue {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return decodeIssue(err)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	}
	return FieldIssue{
		Loc:  []string{"body", fmt.Sprint(offset)},
		Msg:  "JSON decode error",
		Type: "json_invalid",
	}
}

func decodeIssue(err error) FieldIssue {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		return FieldIssue{
			Loc:  []string{"body"},
			Msg:  fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit),
			Type: "json_invalid",
		}
	case errors.Is(err, io.EOF):
		return FieldIssue{Loc: []string{"body"}, Msg: "Field required", Type: "missing"}
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return FieldIssue{
				Loc:  []string{"body"},
				Msg:  "Input should be a valid dictionary or object to extract fields from",
				Type: "model_attributes_type",
			}
		}
		loc := append([]string{"body"}, strings.Split(typeErr.Field, ".")...)
		return FieldIssue{Loc: loc, Msg: "Input should be a valid string", Type: "string_type"}
	case errors.As(err, &syntaxErr):
		return FieldIssue{
			Loc:  []string{"body", fmt.Sprint(syntaxErr.Offset)},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}
	default:
		return FieldIssue{Loc: []string{"body"}, Msg: err.Error(), Type: "json_invalid"}
	}
}
