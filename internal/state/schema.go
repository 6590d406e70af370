// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaID is the $id of the global state bundle schema.
const SchemaID = "https://holomush.dev/schemas/wardrobe-state.schema.json"

// compiledSchema holds the compiled schema to avoid recompilation.
var compiledSchema = sync.OnceValues(compileSchema)

// GenerateSchema generates the JSON Schema of GlobalStateBundle.
func GenerateSchema() ([]byte, error) {
	// Item bundles nest through storage modules, so definitions stay
	// referenced.
	r := jsonschema.Reflector{}
	schema := r.Reflect(&GlobalStateBundle{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Wardrobe Global State"
	schema.Description = "Schema for persisted room and character appearance bundles"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
	}
	return data, nil
}

func compileSchema() (*jschema.Schema, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	return sch, nil
}

// ValidateBundleJSON checks raw JSON against the global state bundle schema.
// It runs before LoadGlobalState on data from outside the server.
func ValidateBundleJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return oops.Code("BUNDLE_EMPTY").Errorf("bundle data is empty")
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return oops.Code("BUNDLE_INVALID_JSON").Wrap(err)
	}
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("BUNDLE_SCHEMA_MISMATCH").Wrap(err)
	}
	return nil
}

// ParseBundle validates and decodes a global state bundle.
func ParseBundle(data []byte) (GlobalStateBundle, error) {
	if err := ValidateBundleJSON(data); err != nil {
		return GlobalStateBundle{}, err
	}
	var b GlobalStateBundle
	if err := json.Unmarshal(data, &b); err != nil {
		return GlobalStateBundle{}, oops.Code("BUNDLE_INVALID_JSON").Wrap(err)
	}
	return b, nil
}

// FormatSchemaError formats a schema validation error for display.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	var verr *jschema.ValidationError
	if errors.As(err, &verr) {
		return strings.TrimSpace(verr.Error())
	}
	return err.Error()
}
