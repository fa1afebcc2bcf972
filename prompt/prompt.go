// ABOUTME: Conversation and extraction prompt builders.
// ABOUTME: The action catalog section is rendered from action.Catalog(), which shares its required-key lists with the generated action schemas.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/formcontext"
)

const identityContract = "You are a JSON-only API. Every response must be a single JSON " +
	"object matching exactly one of the nine action shapes; no prose outside JSON."

const rules = `Rules:
- Ask exactly one field per turn.
- Never re-ask a field that is already present in the current answer set.
- Never fabricate values the user has not provided.
- For fields requiring external data, emit TOOL_CALL first; on the next turn, emit the
  corresponding ASK_* action populated from the tool result.`

const workedExamples = `Worked examples:
Accept and move on:
  user: "Annual leave"
  assistant: {"action":"ASK_DATE","field_id":"start_date","label":"Start date"}
Reject and re-ask the same field:
  user: "qwerty"
  assistant: {"action":"ASK_TEXT","field_id":"injury_description","label":"Describe the injury"}`

// BuildActionCatalog renders the nine action shapes and their required keys,
// generated from action.Catalog(). The output guards check shapes with their
// own rules and do not read this catalog.
func BuildActionCatalog() string {
	var b strings.Builder
	b.WriteString("Action catalog:\n")
	for _, entry := range action.Catalog() {
		fmt.Fprintf(&b, "- %s: requires %s\n", entry.Kind, strings.Join(entry.RequiredKeys, ", "))
	}
	return b.String()
}

// NextStepHint names the single next field to ask and whether a TOOL_CALL
// must precede it.
type NextStepHint struct {
	FieldID      string
	RequiresTool bool
	ToolName     string
}

func (h NextStepHint) String() string {
	if h.FieldID == "" {
		return "Next step: all required fields are answered; emit FORM_COMPLETE."
	}
	if h.RequiresTool {
		return fmt.Sprintf("Next step: field %q requires TOOL_CALL(%s) before it can be asked.", h.FieldID, h.ToolName)
	}
	return fmt.Sprintf("Next step: ask field %q next.", h.FieldID)
}

// State bundles the current-state section inputs.
type State struct {
	Answers       map[string]string
	MissingFields []string
	Hint          NextStepHint
}

func (s State) render() string {
	answersJSON, _ := json.Marshal(s.Answers)
	var b strings.Builder
	b.WriteString("Current state:\n")
	fmt.Fprintf(&b, "answers = %s\n", answersJSON)
	fmt.Fprintf(&b, "missing required fields (in order) = %s\n", strings.Join(s.MissingFields, ", "))
	b.WriteString(s.Hint.String())
	b.WriteString("\n")
	return b.String()
}

// Conversation builds the full conversation-node system prompt.
func Conversation(formContextMD string, state State) string {
	var b strings.Builder
	b.WriteString(identityContract)
	b.WriteString("\n\n")
	b.WriteString(BuildActionCatalog())
	b.WriteString("\n")
	b.WriteString(rules)
	b.WriteString("\n\n")
	b.WriteString(workedExamples)
	b.WriteString("\n\n")
	b.WriteString("Form reference data:\n")
	b.WriteString(formcontext.Condense(formContextMD))
	b.WriteString("\n\n")
	b.WriteString(state.render())
	return b.String()
}

// Extraction builds the extraction-node system prompt: identity and output
// contract, the {field_id: type} list, and the multi_answer instruction.
func Extraction(fieldTypes map[string]formcontext.FieldType) string {
	ids := make([]string, 0, len(fieldTypes))
	for id := range fieldTypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var fields strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&fields, "- %s: %s\n", id, fieldTypes[id])
	}

	return identityContract + "\n\n" +
		"Required fields:\n" + fields.String() + "\n" +
		"Extract only values the user explicitly stated. Output dates as YYYY-MM-DD and " +
		"datetimes as YYYY-MM-DDTHH:MM:SS. Omit any field you are not confident about.\n\n" +
		`Respond with {"intent":"multi_answer","answers":{field_id: value, ...},"message":"..."} ` +
		"or, if the user's message is itself a direct instruction, any single action object."
}
