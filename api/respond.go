package api

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/warp/library-engine/lending"
	"github.com/warp/library-engine/members"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps typed domain errors onto HTTP statuses so
// handlers never re-derive business meaning:
//
//	404 missing entities
//	409 state conflicts (unavailable, already returned, renewal cap,
//	    duplicates, negative stock)
//	400 validation failures
//	500 everything else
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case lending.IsNotFound(err) || errors.Is(err, members.ErrUserNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case lending.IsConflict(err) ||
		errors.Is(err, members.ErrDuplicateEmail) ||
		errors.Is(err, members.ErrUserInUse):
		writeError(w, http.StatusConflict, message, err)
	case lending.IsClientError(err) || errors.Is(err, members.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
