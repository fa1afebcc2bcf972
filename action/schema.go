// ABOUTME: JSON Schema generation and validation for the nine action shapes.
// ABOUTME: Schemas are derived once from Go structs; the schemas and the prompt catalog share the required-key lists in schemaSources.
package action

import (
	"bytes"
	"encoding/json"
	"fmt"

	invopop "github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

// shapeOf is the per-kind struct invopop/jsonschema reflects over to produce
// the validation schema. These exist only for reflection; Action itself stays
// a flat tagged union (see action.go) because that is the wire and in-memory
// representation the rest of the orchestrator works with.
type shapeOf struct {
	messageShape struct {
		Action string `json:"action" jsonschema:"enum=MESSAGE,required"`
		Text   string `json:"text" jsonschema:"required,minLength=1"`
	}
	askTextLikeShape struct {
		Action  string `json:"action" jsonschema:"required"`
		FieldID string `json:"field_id" jsonschema:"required,minLength=1"`
		Label   string `json:"label" jsonschema:"required"`
		Message string `json:"message,omitempty"`
	}
	askOptionsShape struct {
		Action  string   `json:"action" jsonschema:"required"`
		FieldID string   `json:"field_id" jsonschema:"required,minLength=1"`
		Label   string   `json:"label" jsonschema:"required"`
		Options []string `json:"options" jsonschema:"required,minItems=1"`
		Message string   `json:"message,omitempty"`
	}
	toolCallShape struct {
		Action   string         `json:"action" jsonschema:"enum=TOOL_CALL,required"`
		ToolName string         `json:"tool_name" jsonschema:"required,minLength=1"`
		ToolArgs map[string]any `json:"tool_args" jsonschema:"required"`
		Message  string         `json:"message,omitempty"`
	}
	formCompleteShape struct {
		Action  string         `json:"action" jsonschema:"enum=FORM_COMPLETE,required"`
		Data    map[string]any `json:"data" jsonschema:"required"`
		Message string         `json:"message,omitempty"`
	}
}

// schemaSource names, for each Kind, the Go value whose reflected shape
// becomes that kind's JSON Schema, plus the required key list used to render
// the prompt builder's action catalog.
type schemaSource struct {
	kind     Kind
	sample   any
	required []string
}

func schemaSources() []schemaSource {
	var s shapeOf
	return []schemaSource{
		{KindMessage, s.messageShape, []string{"action", "text"}},
		{KindAskText, s.askTextLikeShape, []string{"action", "field_id", "label"}},
		{KindAskDropdown, s.askOptionsShape, []string{"action", "field_id", "label", "options"}},
		{KindAskCheckbox, s.askOptionsShape, []string{"action", "field_id", "label", "options"}},
		{KindAskDate, s.askTextLikeShape, []string{"action", "field_id", "label"}},
		{KindAskDatetime, s.askTextLikeShape, []string{"action", "field_id", "label"}},
		{KindAskLocation, s.askTextLikeShape, []string{"action", "field_id", "label"}},
		{KindToolCall, s.toolCallShape, []string{"action", "tool_name", "tool_args"}},
		{KindFormComplete, s.formCompleteShape, []string{"action", "data"}},
	}
}

// CatalogEntry describes one action kind's shape for prompt rendering.
type CatalogEntry struct {
	Kind         Kind
	RequiredKeys []string
}

// Catalog returns the nine action shapes in the fixed order of Kinds, each
// with its required-key list, for the prompt builder's "Action catalog"
// section.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(Kinds))
	bySource := map[Kind][]string{}
	for _, src := range schemaSources() {
		bySource[src.kind] = src.required
	}
	for _, k := range Kinds {
		entries = append(entries, CatalogEntry{Kind: k, RequiredKeys: bySource[k]})
	}
	return entries
}

// schemas holds the compiled per-kind validators, built once at package init.
var schemas map[Kind]*validator.Schema

func init() {
	schemas = make(map[Kind]*validator.Schema, len(Kinds))
	reflector := &invopop.Reflector{ExpandedStruct: true, DoNotReference: true}

	for _, src := range schemaSources() {
		raw := reflector.Reflect(src.sample)
		raw.Required = src.required

		buf, err := json.Marshal(raw)
		if err != nil {
			panic(fmt.Sprintf("action: marshaling generated schema for %s: %v", src.kind, err))
		}

		url := fmt.Sprintf("formpilot://action/%s.json", src.kind)
		compiler := validator.NewCompiler()
		if err := compiler.AddResource(url, bytes.NewReader(buf)); err != nil {
			panic(fmt.Sprintf("action: adding schema resource for %s: %v", src.kind, err))
		}
		compiled, err := compiler.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("action: compiling schema for %s: %v", src.kind, err))
		}
		schemas[src.kind] = compiled
	}
}

// ValidateShape validates raw JSON bytes (for example a candidate action
// object extracted from LLM text) against the JSON Schema for kind. A non-nil
// error means the action's shape contract was violated. Package guard does
// not call it; guard checks shapes with its own required-field rules.
func ValidateShape(kind Kind, raw []byte) error {
	schema, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("action: no schema registered for kind %q", kind)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("action: invalid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("action: shape violation for %s: %w", kind, err)
	}
	return nil
}

// KnownKindNames returns the nine kind strings in catalog order, used by the
// "Unknown action kind" guard's corrective message.
func KnownKindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}
