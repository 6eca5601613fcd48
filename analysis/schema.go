/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// schemaFor renders the JSON schema of v for embedding in a prompt. The
// reflector is configured to inline everything so the model sees a single
// self-contained object instead of $ref indirection.
func schemaFor(v any) (string, error) {
	r := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	b, err := json.MarshalIndent(r.Reflect(v), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
