// ABOUTME: Parses a form definition markdown document into required fields, field types, and title.
// ABOUTME: Also condenses oversized documents down to the sections the prompt builder needs.
package formcontext

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FieldType is the closed set of field kinds a form definition may declare.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDropdown FieldType = "dropdown"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldDatetime FieldType = "datetime"
	FieldLocation FieldType = "location"
	FieldTime     FieldType = "time"
	FieldFile     FieldType = "file"
)

// validFieldTypes is the membership set backing ParseFields' type validation.
var validFieldTypes = map[FieldType]bool{
	FieldText: true, FieldDropdown: true, FieldCheckbox: true, FieldDate: true,
	FieldDatetime: true, FieldLocation: true, FieldTime: true, FieldFile: true,
}

// Field describes one declared form field.
type Field struct {
	ID       string
	Type     FieldType
	Required bool
	Tool     string // name of the tool that must populate this field's options, if any
	Options  []string
}

// Form is the parsed result of a form definition markdown document.
type Form struct {
	Title          string
	RequiredFields []string // ordered, "determined once, at session creation"
	FieldTypes     map[string]FieldType
	Fields         map[string]Field
}

// fieldLineRe matches a parsed (markup-stripped) field bullet such as
// "establishment (dropdown, required, tool: get_establishments): options: A, B".
var fieldLineRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)(?:\s*:\s*(.*))?$`)
var optionsRe = regexp.MustCompile(`(?i)^options?\s*:\s*(.*)$`)

// Parse extracts the title, required fields, and field-type map from a form
// definition markdown document (the form-context utilities).
func Parse(formContextMD string) (*Form, error) {
	if strings.TrimSpace(formContextMD) == "" {
		return nil, fmt.Errorf("formcontext: form_context_md must not be empty")
	}

	fm, body := splitFrontMatter(formContextMD)

	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	form := &Form{
		FieldTypes: map[string]FieldType{},
		Fields:     map[string]Field{},
	}

	var currentSection string
	var pendingField *Field // last field parsed, to attach a trailing "options:" line

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			txt := plainText(node, source)
			if node.Level == 1 && form.Title == "" {
				form.Title = txt
			}
			if node.Level == 2 {
				currentSection = strings.TrimSpace(txt)
				pendingField = nil
			}
		case *ast.ListItem:
			if !isFieldsSection(currentSection) {
				return ast.WalkContinue, nil
			}
			line := plainText(node, source)
			if f := parseFieldLine(line); f != nil {
				form.Fields[f.ID] = *f
				form.FieldTypes[f.ID] = f.Type
				if f.Required {
					form.RequiredFields = append(form.RequiredFields, f.ID)
				}
				fCopy := *f
				pendingField = &fCopy
			} else if pendingField != nil {
				if m := optionsRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
					opts := splitOptions(m[1])
					pendingField.Options = opts
					field := form.Fields[pendingField.ID]
					field.Options = opts
					form.Fields[pendingField.ID] = field
				}
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("formcontext: walking document: %w", err)
	}

	if fm.Title != "" {
		form.Title = fm.Title
	}
	if form.Title == "" {
		form.Title = "Untitled Form"
	}

	for _, id := range form.RequiredFields {
		if _, ok := form.FieldTypes[id]; !ok {
			return nil, fmt.Errorf("formcontext: required field %q has no declared type", id)
		}
	}

	return form, nil
}

// isFieldsSection reports whether heading text names a section that declares
// fields. Authors may call it "Fields" or "Field Summary" (the latter is also
// one of the five sections preserved by condensation).
func isFieldsSection(heading string) bool {
	h := strings.ToLower(strings.TrimSpace(heading))
	return h == "fields" || h == "field summary"
}

// parseFieldLine parses a single markup-stripped field bullet. Returns nil if
// the line does not match the "id (type, [required], [tool: x])" shape.
func parseFieldLine(line string) *Field {
	m := fieldLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return nil
	}
	id := m[1]
	attrs := splitAndTrim(m[2], ",")
	if len(attrs) == 0 {
		return nil
	}
	ft := FieldType(strings.ToLower(attrs[0]))
	if !validFieldTypes[ft] {
		return nil
	}

	f := &Field{ID: id, Type: ft}
	for _, attr := range attrs[1:] {
		low := strings.ToLower(attr)
		switch {
		case low == "required":
			f.Required = true
		case strings.HasPrefix(low, "tool:"):
			f.Tool = strings.TrimSpace(attr[strings.Index(attr, ":")+1:])
		}
	}
	if len(m) > 3 && m[3] != "" {
		if om := optionsRe.FindStringSubmatch(strings.TrimSpace(m[3])); om != nil {
			f.Options = splitOptions(om[1])
		}
	}
	return f
}

func splitOptions(s string) []string {
	return splitAndTrim(s, ",")
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// plainText concatenates the rendered text of n's inline descendants,
// dropping markdown markup (emphasis, code spans, links) so downstream
// parsing sees natural-language text.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			buf.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.CodeSpan:
			// Code span text is visited as child *ast.Text nodes already.
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
