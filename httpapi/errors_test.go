/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package httpapi

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chainguard-dev/clog"

	"github.com/gdev-ai/gdev/githubapi"
)

func TestStatusFor(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want int
	}{
		{"not found", githubapi.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", upstream(githubapi.ErrNotFound), http.StatusNotFound},
		{"validation", badRequestf("nope"), http.StatusBadRequest},
		{"upstream", upstream(errors.New("rate limited")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Errorf("statusFor() = %d, wanted = %d", got, tc.want)
			}
		})
	}
}

func TestWriteJSONLogsWithRequestScope(t *testing.T) {
	var buf bytes.Buffer
	logger := clog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "req-42")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(clog.WithLogger(req.Context(), logger))

	// A channel is not encodable, forcing the failure path.
	w := httptest.NewRecorder()
	writeJSON(w, req, http.StatusOK, map[string]any{"bad": make(chan int)})

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("encode failure log = %q, wanted the request-scoped logger's fields", buf.String())
	}
}
