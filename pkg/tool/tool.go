// Package tool defines the contract every tool implements: a declarative
// parameter schema, an optional security hook, an optional confirmation
// gate, and a run hook, wrapped in an execution pipeline that validates,
// confirms, audits and times every attempt.
package tool

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Parameter declares one input of a tool.
type Parameter struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
}

// RunFunc is the tool's business logic. A returned error wrapping
// provider.Error is treated as an infrastructure failure and propagated to
// the orchestrator for failover; any other error becomes a failed Result.
type RunFunc func(ctx context.Context, params map[string]interface{}, tc *Context) (interface{}, error)

// SecurityFunc validates params beyond the schema, for example rejecting
// non-read-only SQL. A returned error fails the execution.
type SecurityFunc func(params map[string]interface{}, tc *Context) error

// ProposalFunc lets a tool customize the proposal presented for
// confirmation. When nil a default proposal is built.
type ProposalFunc func(params map[string]interface{}) Proposal

// Definition declares a tool's identity, schema and hooks.
type Definition struct {
	Name                 string
	Description          string
	Parameters           []Parameter
	RequiresConfirmation bool
	Run                  RunFunc
	ValidateSecurity     SecurityFunc
	BuildProposal        ProposalFunc
}

// Tool is a registered, immutable tool with its compiled schema.
type Tool struct {
	def    Definition
	schema *gojsonschema.Schema
}

// New validates the definition, compiles its JSON Schema and returns the
// tool.
func New(def Definition) (*Tool, error) {
	if err := validateDefinition(def); err != nil {
		return nil, fmt.Errorf("invalid tool definition: %w", err)
	}
	schema, err := generateSchema(def)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema for %s: %w", def.Name, err)
	}
	return &Tool{def: def, schema: schema}, nil
}

// Name returns the tool's unique name.
func (t *Tool) Name() string {
	return t.def.Name
}

// Description returns the tool's description.
func (t *Tool) Description() string {
	return t.def.Description
}

// RequiresConfirmation reports whether execution is gated on a human
// confirmation.
func (t *Tool) RequiresConfirmation() bool {
	return t.def.RequiresConfirmation
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Description == "" {
		return fmt.Errorf("tool description cannot be empty")
	}
	if def.Run == nil {
		return fmt.Errorf("tool run hook cannot be nil")
	}

	validTypes := map[string]bool{
		"string": true, "number": true, "boolean": true,
		"object": true, "array": true, "integer": true,
	}
	for _, param := range def.Parameters {
		if param.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if !validTypes[param.Type] {
			return fmt.Errorf("invalid parameter type %s for %s", param.Type, param.Name)
		}
	}
	return nil
}

func generateSchema(def Definition) (*gojsonschema.Schema, error) {
	properties := make(map[string]interface{})
	required := []string{}

	for _, param := range def.Parameters {
		paramSchema := map[string]interface{}{
			"type":        param.Type,
			"description": param.Description,
		}
		if param.Default != nil {
			paramSchema["default"] = param.Default
		}
		properties[param.Name] = paramSchema

		if param.Required {
			required = append(required, param.Name)
		}
	}

	schemaMap := map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

func (t *Tool) validateParams(params map[string]interface{}) error {
	if params == nil {
		params = map[string]interface{}{}
	}
	result, err := t.schema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := []string{}
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}
		return fmt.Errorf("validation errors: %v", msgs)
	}
	return nil
}
