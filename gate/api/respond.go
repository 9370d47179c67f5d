package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	msgInternal   = "Internal Server Error"
	msgUnexpected = "An unexpected error occurred. Please try again."
)

type (
	errorBody struct {
		Error string `json:"error"`
	}

	successBody struct {
		Success bool `json:"success"`
	}

	validatorErrors = validator.ValidationErrors
)

var (
	validate = newValidate()

	errNotAnObject = errors.New("request body must be a json object")
)

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(jsonName)
	return v
}

// decodeBody reads a size-limited json object from r into the struct pointed
// by out and runs the struct validations on it. Keys must match the json tag
// of each field exactly, a key differing only by case is ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	var raw map[string]json.RawMessage
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&raw)
	if err != nil {
		return fmt.Errorf("unable to decode request body, cause %w", err)
	}
	if raw == nil {
		return errNotAnObject
	}
	val := reflect.ValueOf(out).Elem()
	for i := 0; i < val.NumField(); i++ {
		name := jsonName(val.Type().Field(i))
		msg, found := raw[name]
		if !found {
			continue
		}
		err = json.Unmarshal(msg, val.Field(i).Addr().Interface())
		if err != nil {
			return fmt.Errorf("unable to decode field %v, cause %w", name, err)
		}
	}
	return validate.Struct(out)
}

func jsonName(fld reflect.StructField) string {
	return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
