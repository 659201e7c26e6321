package helpers

import (
	"net/http"
	"strings"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// ParseAndValidate parses the request body into a Form, lets bind populate dest from it,
// and runs dest.Validate(). On failure it writes a 400 JSON error and returns nil.
// Callers should return immediately when ParseAndValidate returns nil.
func ParseAndValidate(w http.ResponseWriter, r *http.Request, maxMemory int64, dest Validator, bind func(*Form)) *Form {
	form, err := ParseForm(r, maxMemory)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body", err.Error())
		return nil
	}
	bind(form)
	if errs := dest.Validate(); len(errs) > 0 {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "), "")
		return nil
	}
	return form
}
