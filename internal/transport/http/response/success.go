package response

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v with the given status. Encoding failures are
// swallowed: the status line is already on the wire by then.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusCreated, v)
}

// NoContent writes 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
