package blueprint

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaSource []byte

// ValidationError is a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) String() string {
	return e.Path + ": " + e.Message
}

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := yaml.Unmarshal(schemaSource, &doc); err != nil {
			schemaErr = fmt.Errorf("parse blueprint schema: %w", err)
			return
		}
		jsonBytes, err := json.Marshal(doc)
		if err != nil {
			schemaErr = fmt.Errorf("convert blueprint schema: %w", err)
			return
		}
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile blueprint schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks a raw blueprint JSON document against the schema.
// A nil slice means the document is valid.
func ValidateDocument(data []byte) ([]ValidationError, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate blueprint: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]ValidationError, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, ValidationError{Path: field, Message: verr.Description()})
	}
	return violations, nil
}

// Validate checks b against the schema.
func Validate(b *Blueprint) ([]ValidationError, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode blueprint: %w", err)
	}
	return ValidateDocument(data)
}
