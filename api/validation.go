package api

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// decodeAndValidate decodes the request body into v and runs struct
// validation. Returns false after writing the error response.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var details error
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			details = fmt.Errorf("field %s failed %q validation", errs[0].Field(), errs[0].Tag())
		} else {
			details = err
		}
		writeError(w, http.StatusBadRequest, "Invalid request", details)
		return false
	}
	return true
}
