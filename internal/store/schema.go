package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const tasksSchemaURL = "taskline://schema/tasks.json"

// tasksSchema describes the persisted json file: task name -> [start, end, category, notes, users].
const tasksSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "minItems": 5,
    "maxItems": 5,
    "items": [
      {"type": "string", "format": "date"},
      {"type": "string", "format": "date"},
      {"type": "string"},
      {"type": "string"},
      {"type": "array", "items": {"type": "string"}}
    ]
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func tasksFileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		compiler.AssertFormat = true
		if err := compiler.AddResource(tasksSchemaURL, strings.NewReader(tasksSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(tasksSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validateWire checks the raw document against the tasks file schema.
func validateWire(b []byte) error {
	schema, err := tasksFileSchema()
	if err != nil {
		return fmt.Errorf("compile tasks schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	collectSchemaMessages(ve, &msgs)
	if len(msgs) == 0 {
		return err
	}
	return fmt.Errorf("tasks file does not match schema: %s", strings.Join(msgs, "; "))
}

func collectSchemaMessages(ve *jsonschema.ValidationError, out *[]string) {
	if ve == nil {
		return
	}
	if len(ve.Causes) == 0 {
		loc := strings.TrimPrefix(ve.InstanceLocation, "/")
		if loc == "" {
			loc = "(root)"
		}
		*out = append(*out, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectSchemaMessages(c, out)
	}
}
