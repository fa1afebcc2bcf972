// ABOUTME: Lenient JSON extraction from LLM text output, shared by the output
// ABOUTME: guards and the tool_handler node's options-hint scan.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractObject pulls a single JSON object out of raw LLM text using a
// 3-tier strategy: the whole text as-is, then with markdown code fences
// stripped, then the substring from the first '{' to the last '}'. It
// returns the raw bytes of whichever candidate first parses as a JSON
// object (not array or scalar).
func ExtractObject(text string) ([]byte, error) {
	for _, candidate := range []string{text, stripCodeFences(text), braceSpan(text)} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if !gjson.Valid(candidate) {
			continue
		}
		if result := gjson.Parse(candidate); result.IsObject() {
			return []byte(candidate), nil
		}
	}
	return nil, fmt.Errorf("jsonutil: no JSON object found in LLM output")
}

// stripCodeFences removes ``` / ```json fence lines and blank lines outside a
// fence. Every other line is kept, including prose outside the fence.
func stripCodeFences(text string) string {
	var lines []string
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// braceSpan returns the substring from the first '{' to the last '}', or
// "" if no such balanced-looking span exists.
func braceSpan(text string) string {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last <= first {
		return ""
	}
	return text[first : last+1]
}

// StringAt returns the string value at the priority-ordered list of nested
// gjson paths, checked in order, returning the first non-empty match. Used
// by the tool_handler "options hint" scan to pull a human-readable
// label out of a tool result element regardless of which key the tool
// happened to use.
func StringAt(raw []byte, paths ...string) string {
	for _, path := range paths {
		v := gjson.GetBytes(raw, path)
		if v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// ForEachArrayElement walks a JSON array at path, invoking fn with the raw
// bytes of each element. Non-array or missing values are a no-op.
func ForEachArrayElement(raw []byte, path string, fn func(element []byte)) {
	v := gjson.GetBytes(raw, path)
	if !v.IsArray() {
		return
	}
	v.ForEach(func(_, value gjson.Result) bool {
		fn([]byte(value.Raw))
		return true
	})
}

// ForEachNestedArray walks raw generically — the root itself if it is an
// array, plus every array-valued field at any depth under an object or
// array — invoking fn with the raw bytes of each element. This is how the
// tool_handler options-hint scan finds a result list regardless of which
// wrapper key (if any) the tool happened to use.
func ForEachNestedArray(raw []byte, fn func(element []byte)) {
	v := gjson.ParseBytes(raw)
	walkArrays(v, fn)
}

func walkArrays(v gjson.Result, fn func(element []byte)) {
	if v.IsArray() {
		v.ForEach(func(_, element gjson.Result) bool {
			fn([]byte(element.Raw))
			walkArrays(element, fn)
			return true
		})
		return
	}
	if v.IsObject() {
		v.ForEach(func(_, value gjson.Result) bool {
			walkArrays(value, fn)
			return true
		})
	}
}

// Compact removes insignificant whitespace, used when logging a JSON
// fragment on one line.
func Compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(raw)
}
