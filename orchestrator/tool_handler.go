// ABOUTME: Tool_handler node: consumes tool_results produced by the client after a TOOL_CALL.
package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/formpilot/formpilot-ai/internal/jsonutil"
	"github.com/formpilot/formpilot-ai/session"
)

// optionsHintPaths is the priority-ordered key list scanned for a
// human-readable label in each tool-result element.
var optionsHintPaths = []string{
	"name.english", "name", "value.english", "value", "label", "title", "text", "description",
}

func (d *Driver) runToolHandler(s *session.Session, results []ToolResult) {
	for _, tr := range results {
		if tr.ToolName != s.PendingToolName {
			// Result for a tool we're not waiting on; ignore silently and
			// let the LLM re-request if it still needs this call.
			continue
		}

		hint := optionsHint(tr.Result)

		s.AppendHistory(session.RoleSystem, fmt.Sprintf(
			"Tool %s returned: %s. Usable options: %s. Present these to the user via ASK_DROPDOWN.",
			tr.ToolName, jsonutil.Compact(tr.Result), hint,
		))

		s.PendingToolName = ""
	}
}

// optionsHint walks a tool result payload generically — whatever array it
// contains, under whatever key the tool happened to use — and assembles a
// JSON array of strings from the first matching nested name field in each
// element.
func optionsHint(raw []byte) string {
	var labels []string
	jsonutil.ForEachNestedArray(raw, func(element []byte) {
		if label := jsonutil.StringAt(element, optionsHintPaths...); label != "" {
			labels = append(labels, label)
		}
	})

	if len(labels) == 0 {
		return "[]"
	}
	out, err := json.Marshal(labels)
	if err != nil {
		return "[]"
	}
	return string(out)
}
