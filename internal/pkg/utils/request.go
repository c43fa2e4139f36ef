package utils

import (
	"clinicdesk-service/internal/pkg/exceptions"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// ParseAndValidateBody decodes a JSON body into dst and runs struct validation.
func ParseAndValidateBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}

	err = ValidateStruct(dst)
	if err != nil {
		return exceptions.ErrInputValidation(err)
	}
	return nil
}

func ParseInt64URLParam(r *http.Request, paramName string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(r, paramName), 10, 64)
	if err != nil || value <= 0 {
		return 0, exceptions.ErrURLParamIDValidation(err, paramName)
	}
	return value, nil
}
