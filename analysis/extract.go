/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unfence strips markdown code fences and surrounding prose from a model
// response so the JSON payload inside can be unmarshaled. Models asked for
// bare JSON still wrap it in ```json fences often enough that decoding must
// tolerate both.
func Unfence(text string) string {
	if i := strings.Index(text, "```json"); i >= 0 {
		rest := text[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}

	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)

	// Last resort for responses with prose around the object.
	if !strings.HasPrefix(t, "{") {
		if i, j := strings.Index(t, "{"), strings.LastIndex(t, "}"); i >= 0 && j > i {
			t = t[i : j+1]
		}
	}
	return t
}

func decode[T any](text string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(Unfence(text)), &v); err != nil {
		return nil, fmt.Errorf("unmarshaling model response: %w", err)
	}
	return &v, nil
}
