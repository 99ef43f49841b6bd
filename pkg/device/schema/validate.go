package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/urmzd/remotehub/pkg/device"
)

// Validator checks request payloads against the embedded device schemas.
// NewValidator compiles every document under schemas/ up front and the
// compiled set is never written again, so one Validator can be shared by
// the REST and MCP handlers.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles the embedded schemas. They ship with the binary,
// so a document that fails to compile panics.
func NewValidator() *Validator {
	names, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		panic(fmt.Sprintf("schema: listing embedded schemas: %v", err))
	}

	c := jsonschema.NewCompiler()
	for _, name := range names {
		var doc any
		if err := json.Unmarshal(mustRead(name), &doc); err != nil {
			panic(fmt.Sprintf("schema: invalid JSON in %s: %v", name, err))
		}
		if err := c.AddResource(name, doc); err != nil {
			panic(fmt.Sprintf("schema: failed to add %s: %v", name, err))
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		compiled, err := c.Compile(name)
		if err != nil {
			panic(fmt.Sprintf("schema: failed to compile %s: %v", name, err))
		}
		v.schemas[path.Base(name)] = compiled
	}
	return v
}

// Validate checks payload against the named schema. Failures wrap
// device.ErrValidation so callers map them to a 400.
func (v *Validator) Validate(name string, payload map[string]any) error {
	compiled, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", device.ErrValidation, err)
	}
	return nil
}
