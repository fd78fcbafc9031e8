package rules

import (
	"bytes"
	"errors"
	"fmt"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://raw.githubusercontent.com/gzhole/skillhook/main/internal/rules/skill-rules.schema.json"

var (
	//go:embed skill-rules.schema.json
	schemaJSON []byte

	// DocumentValidator checks skill-rules.json files before they are decoded.
	DocumentValidator = MustNewValidator(schemaJSON)

	ErrSchema = errors.New("schema validation")
)

// Validator validates rule documents against a JSON schema.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator(schemaData []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: sch}, nil
}

func MustNewValidator(schemaData []byte) *Validator {
	v, err := NewValidator(schemaData)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks raw JSON bytes. Malformed JSON and schema violations are
// both reported as errors.
func (v *Validator) Validate(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	if err := v.schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", ErrSchema, verr.Error())
		}
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	return nil
}
