/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chainguard-dev/clog"

	"github.com/gdev-ai/gdev/githubapi"
)

// validationError marks a request the client can fix. It maps to 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// upstreamError wraps a failure from GitHub or the model backend. It maps
// to 502.
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

func upstream(err error) error {
	if err == nil {
		return nil
	}
	// Missing resources stay 404 even when reported by a collaborator.
	if errors.Is(err, githubapi.ErrNotFound) {
		return err
	}
	return &upstreamError{err: err}
}

// statusFor folds an error into the service's status-code taxonomy.
func statusFor(err error) int {
	var ve *validationError
	var ue *upstreamError
	switch {
	case errors.Is(err, githubapi.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ue):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		clog.FromContext(r.Context()).With("error", err).Error("Request failed")
	}
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do but note it.
		clog.FromContext(r.Context()).With("error", err).Warn("Encoding response")
	}
}
