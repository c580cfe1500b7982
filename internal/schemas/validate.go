// Package schemas provides JSON Schema validation for analysis framework payloads.
package schemas

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed frameworks/*.schema.json
var frameworkFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// FrameworkSchemas lists the keys that have an embedded schema.
func FrameworkSchemas() ([]string, error) {
	if err := compileFrameworks(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(compiled))
	for k := range compiled {
		keys = append(keys, k)
	}
	return keys, nil
}

// ValidateFramework validates one framework fragment against its embedded schema.
func ValidateFramework(key string, doc []byte) error {
	if err := compileFrameworks(); err != nil {
		return err
	}
	schema, ok := compiled[key]
	if !ok {
		return &SchemaLoadError{Path: key, Message: "no schema registered for framework"}
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to read %s document: %w", key, err)
	}
	return resultError(result)
}

// ValidateJSONFile validates a JSON file against the schema for key.
func ValidateJSONFile(key, jsonPath string) error {
	absPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("JSON file not found: %s", absPath)
		}
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ValidateFramework(key, data)
}

func compileFrameworks() error {
	compileOnce.Do(func() {
		entries, err := frameworkFS.ReadDir("frameworks")
		if err != nil {
			compileErr = &SchemaLoadError{Path: "frameworks", Message: "cannot list embedded schemas", Cause: err}
			return
		}
		out := make(map[string]*gojsonschema.Schema, len(entries))
		for _, entry := range entries {
			name := entry.Name()
			path := "frameworks/" + name
			content, err := frameworkFS.ReadFile(path)
			if err != nil {
				compileErr = &SchemaLoadError{Path: path, Message: "cannot read embedded schema", Cause: err}
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(content))
			if err != nil {
				compileErr = &SchemaLoadError{Path: path, Message: "invalid schema", Cause: err}
				return
			}
			out[strings.TrimSuffix(name, ".schema.json")] = schema
		}
		compiled = out
	})
	return compileErr
}

func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
