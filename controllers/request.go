package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"shop-api/middleware"
	"shop-api/services"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst and checks its validate
// tags. Unknown fields are rejected. An empty body is allowed only when
// optional is set.
func decodeJSON(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			if !optional {
				return services.Validation("Request body is required")
			}
		default:
			return bodyError(err)
		}
	} else if dec.More() {
		return services.Validation("Request body must contain a single JSON object")
	}
	return validateStruct(dst)
}

func bodyError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxErr):
		return services.Validation("Request body too large")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return services.Validation("Malformed JSON")
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return services.Validation("Invalid value for %s", typeErr.Field)
		}
		return services.Validation("Malformed JSON")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return services.Validation("Unknown field %s", field)
	default:
		return services.Validation("Invalid request body")
	}
}

func validateStruct(dst any) error {
	v := reflect.ValueOf(dst)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	err := validate.Struct(v.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return services.Validation("Invalid request body")
	}
	return services.Validation("%s", fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// pathID parses the named route variable as an object id.
func pathID(r *http.Request, name, entity string) (primitive.ObjectID, error) {
	return services.ParseID(mux.Vars(r)[name], entity)
}

// caller returns the identity set by AuthMiddleware.
func caller(r *http.Request) (services.Identity, error) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok || id == nil {
		return services.Identity{}, services.Unauthenticated("Not authorized, no token")
	}
	return *id, nil
}
