package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
)

// maxJSONBody bounds plain JSON request bodies; uploads go through multipart.
const maxJSONBody = 1 << 20

var validate = func() *validator.Validate {
	v := validator.New()
	// Report fields by their json names so details match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// DecodeJSONBody decodes exactly one JSON object with no unknown fields and
// validates it.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	return decodeStrict(io.LimitReader(r.Body, maxJSONBody), dest, "invalid request body")
}

// DecodeJSONBytes is DecodeJSONBody for an already-read payload such as the
// metadata part of a multipart request.
func DecodeJSONBytes(data []byte, dest any) error {
	return decodeStrict(bytes.NewReader(data), dest, "invalid metadata")
}

func decodeStrict(src io.Reader, dest any, message string) error {
	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	err := dec.Decode(dest)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after the JSON object")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message).
			WithDetails(map[string]any{"error": err.Error()})
	}
	return ValidateStruct(dest)
}

func ValidateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

// ruleMessages are formatted with the tag parameter.
var ruleMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"numeric":  "must be numeric",
	"uuid":     "must be a uuid",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"oneof":    "must be one of %s",
	"len":      "must be %s characters",
	"gtefield": "must not be below %s",
}

func describe(fe validator.FieldError) string {
	msg, ok := ruleMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		param := fe.Param()
		if fe.Tag() == "gtefield" {
			param = strings.ToLower(param)
		}
		return fmt.Sprintf(msg, param)
	}
	return msg
}
