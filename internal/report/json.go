package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

// Envelope is the JSON wrapper around a summary, matching the CLI's
// status/data response shape.
type Envelope struct {
	Status string   `json:"status"`
	Data   *Summary `json:"data"`
}

// RenderJSON writes the summary as an indented JSON envelope followed by
// a newline. The output validates against the embedded schema.
func RenderJSON(w io.Writer, s Summary) error {
	env := Envelope{Status: "ok", Data: &s}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

// ValidateEnvelope checks raw JSON against the report schema. Consumers
// can run a report through this before parsing it.
func ValidateEnvelope(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("report.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("add report schema: %w", err)
	}
	schema, err := compiler.Compile("report.schema.json")
	if err != nil {
		return fmt.Errorf("compile report schema: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("report schema: %w", err)
	}
	return nil
}
