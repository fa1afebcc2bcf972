// ABOUTME: The turn driver: a fixed six-node graph, evaluated once per turn.
// ABOUTME: Compiled as a Go switch over node names rather than a generic dispatch table, since this graph is fixed rather than user-authored.
package orchestrator

import (
	"context"
	"time"

	"github.com/formpilot/formpilot-ai/action"
	"github.com/formpilot/formpilot-ai/llm"
	"github.com/formpilot/formpilot-ai/metrics"
	"github.com/formpilot/formpilot-ai/session"
)

// Node names every stop in the turn graph, for logging and metrics labels.
type Node string

const (
	NodeGreeting      Node = "greeting"
	NodeExtraction    Node = "extraction"
	NodeValidateInput Node = "validate_input"
	NodeToolHandler   Node = "tool_handler"
	NodeConversation  Node = "conversation"
	NodeFinalize      Node = "finalize"
)

// ToolResult is one entry of the tool_results input envelope.
type ToolResult struct {
	ToolName string
	ToolArgs map[string]any
	Result   []byte // raw JSON, as received from the client
}

// Input is the per-turn input the driver receives from the transport layer.
type Input struct {
	UserMessage string
	ToolResults []ToolResult
}

// Output is what one turn produces.
type Output struct {
	Action  action.Action
	Answers map[string]string
}

// Event is a lifecycle notification emitted as the driver traverses nodes,
// for structured logging.
type Event struct {
	Node      Node
	SessionID string
	Detail    string
	At        time.Time
}

// EventSink receives Events as the driver runs. A nil sink is a no-op.
type EventSink func(Event)

// Driver runs one turn of the fixed graph against a *session.Session.
type Driver struct {
	LLM             llm.Client
	MaxGuardRetries int
	Events          EventSink
	Now             func() time.Time

	// Metrics is optional; a nil Metrics disables all instrumentation.
	Metrics *metrics.Metrics
}

// NewDriver builds a Driver with the given LLM client and default settings.
func NewDriver(client llm.Client) *Driver {
	return &Driver{
		LLM:             client,
		MaxGuardRetries: 2,
		Now:             time.Now,
	}
}

func (d *Driver) emit(node Node, sessionID, detail string) {
	if d.Events == nil {
		return
	}
	d.Events(Event{Node: node, SessionID: sessionID, Detail: detail, At: d.Now()})
}

// Run executes one full turn: route, traverse nodes (each updates the session
// in place), and return the terminal action plus a snapshot of answers.
func (d *Driver) Run(ctx context.Context, s *session.Session, in Input) (Output, error) {
	start := d.clock()
	route := route(s, in)

	out, err := d.run(ctx, s, in, route)

	if d.Metrics != nil {
		d.Metrics.RecordTurn(string(routeNode(route)), d.clock().Sub(start))
		if out.Action.Kind == action.KindToolCall {
			d.Metrics.RecordToolCall(out.Action.ToolName)
		}
	}
	return out, err
}

// routeNode maps the routing decision to the node label metrics report
// under — every non-greeting route ends in finalize (usually after
// conversation), but the label identifies which entry node the turn took.
func routeNode(route routeKind) Node {
	switch route {
	case routeGreeting:
		return NodeGreeting
	case routeToolHandler:
		return NodeToolHandler
	case routeValidateInput:
		return NodeValidateInput
	case routeExtraction:
		return NodeExtraction
	default:
		return NodeConversation
	}
}

func (d *Driver) run(ctx context.Context, s *session.Session, in Input, route routeKind) (Output, error) {
	var result action.Action

	switch route {
	case routeGreeting:
		result = d.runGreeting(s)
		d.emit(NodeGreeting, s.ID, "terminal leaf")
		return Output{Action: result, Answers: s.AnswersSnapshot()}, nil

	case routeToolHandler:
		d.runToolHandler(s, in.ToolResults)
		d.emit(NodeToolHandler, s.ID, "tool_results processed")
		result = d.runConversationWithGuards(ctx, s)
		result = d.finalize(s, result)
		return Output{Action: result, Answers: s.AnswersSnapshot()}, nil

	case routeValidateInput:
		d.runValidateInput(ctx, s, in.UserMessage)
		d.emit(NodeValidateInput, s.ID, "answer validated")
		result = d.runConversationWithGuards(ctx, s)
		result = d.finalize(s, result)
		return Output{Action: result, Answers: s.AnswersSnapshot()}, nil

	case routeExtraction:
		direct, formComplete := d.runExtraction(ctx, s, in.UserMessage)
		d.emit(NodeExtraction, s.ID, "extraction pass complete")
		switch {
		case direct != nil:
			result = *direct
		case formComplete:
			result = action.FormComplete(toAnyMap(s.AnswersSnapshot()), "")
		default:
			result = d.runConversationWithGuards(ctx, s)
		}
		result = d.finalize(s, result)
		return Output{Action: result, Answers: s.AnswersSnapshot()}, nil

	default: // routeConversation
		result = d.runConversationWithGuards(ctx, s)
		result = d.finalize(s, result)
		return Output{Action: result, Answers: s.AnswersSnapshot()}, nil
	}
}

func toAnyMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
