package validate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/lookatitude/beluga-ai/core"
)

// Registry is the schema registry and validator (C1): a named set of
// draft-07 JSON schemas, each compiled once and reused across calls.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
	raw     map[string]string
}

// NewRegistry compiles the fixed set of gateway schemas and returns a
// ready-to-use Registry. A compile failure on a built-in schema is a
// programming error and panics, matching the teacher's fail-fast posture
// for schemas baked into the binary.
func NewRegistry() *Registry {
	r := &Registry{
		schemas: make(map[string]*gojsonschema.Schema, len(defaultSchemas)),
		raw:     make(map[string]string, len(defaultSchemas)),
	}
	for name, src := range defaultSchemas {
		if err := r.Register(name, src); err != nil {
			panic(fmt.Sprintf("validate: built-in schema %q failed to compile: %v", name, err))
		}
	}
	return r
}

// Register compiles schemaJSON and adds (or replaces) it under name.
// Used both to seed the built-in set and to add schemas at runtime.
func (r *Registry) Register(name, schemaJSON string) error {
	loader := gojsonschema.NewStringLoader(schemaJSON)
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return fmt.Errorf("validate: compiling schema %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = compiled
	r.raw[name] = schemaJSON
	return nil
}

// ListSchemas returns the names of every schema currently registered.
func (r *Registry) ListSchemas() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// Validate checks data against the named schema, returning the list of
// human-readable violations (empty when valid). An unknown schema name
// is itself reported as a single violation rather than a Go error, so
// callers can treat it uniformly with field-level failures.
func (r *Registry) Validate(name string, data any) (bool, []string) {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return false, []string{fmt.Sprintf("unknown schema %q", name)}
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return false, []string{fmt.Sprintf("encoding payload: %v", err)}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(encoded))
	if err != nil {
		return false, []string{fmt.Sprintf("validating payload: %v", err)}
	}
	if result.Valid() {
		return true, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return false, errs
}

// ValidateOrReject validates data against the named schema and returns a
// core.Error tagged ErrSchemaViolation on failure, carrying the
// violation list for logging and for A2A correction injection.
func (r *Registry) ValidateOrReject(name string, data any) error {
	ok, errs := r.Validate(name, data)
	if ok {
		return nil
	}
	return core.NewError("validate.validate_or_reject", core.ErrSchemaViolation, fmt.Sprintf("schema %q violated: %v", name, errs), nil)
}
