// ABOUTME: Condenses an oversized form definition down to the sections the conversation prompt needs.
// ABOUTME: Deterministic by construction ( design note) so prompt tests can pin the exact output.
package formcontext

import (
	"regexp"
	"strings"
)

// condenseThresholdLines is the line count above which Condense extracts
// sections instead of passing the document through whole.
const condenseThresholdLines = 150

// preservedSections are the headings kept when condensing, in the order
// they should appear in the condensed output (not necessarily their order
// in the source document).
var preservedSections = []string{
	"Tool Calls",
	"Form Overview",
	"Field Summary",
	"Conditional Logic",
	"Chat Agent Instructions",
}

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})\s+(.*?)\s*$`)

// Condense returns formContextMD unchanged if it is at or under the
// threshold. Above it, it extracts the five named sections (matched
// case-insensitively against heading text); if none are found, it falls
// back to the first 50 and last 100 lines of the document.
func Condense(formContextMD string) string {
	lines := strings.Split(formContextMD, "\n")
	if len(lines) <= condenseThresholdLines {
		return formContextMD
	}

	if extracted, ok := extractSections(formContextMD); ok {
		return extracted
	}
	return headTail(lines, 50, 100)
}

// extractSections pulls out each named section's full text (heading through
// the line before the next heading of equal-or-lower level), in
// preservedSections order. ok is false if none of the sections were found.
func extractSections(md string) (string, bool) {
	headings := findHeadings(md)
	if len(headings) == 0 {
		return "", false
	}

	var out strings.Builder
	found := false
	for _, want := range preservedSections {
		for i, h := range headings {
			if !strings.EqualFold(strings.TrimSpace(h.text), want) {
				continue
			}
			end := len(md)
			for _, next := range headings[i+1:] {
				if len(next.level) <= len(h.level) {
					end = next.start
					break
				}
			}
			if out.Len() > 0 {
				out.WriteString("\n\n")
			}
			out.WriteString(strings.TrimRight(md[h.start:end], "\n"))
			found = true
			break
		}
	}
	if !found {
		return "", false
	}
	return out.String(), true
}

type headingPos struct {
	level string
	text  string
	start int
}

func findHeadings(md string) []headingPos {
	matches := headingRe.FindAllStringSubmatchIndex(md, -1)
	out := make([]headingPos, 0, len(matches))
	for _, m := range matches {
		out = append(out, headingPos{
			level: md[m[2]:m[3]],
			text:  md[m[4]:m[5]],
			start: m[0],
		})
	}
	return out
}

// headTail returns the first headLines and last tailLines of lines, joined
// with a marker line in between, as the last-resort condensation fallback.
func headTail(lines []string, headLines, tailLines int) string {
	if len(lines) <= headLines+tailLines {
		return strings.Join(lines, "\n")
	}
	var out strings.Builder
	out.WriteString(strings.Join(lines[:headLines], "\n"))
	out.WriteString("\n\n[... form definition condensed ...]\n\n")
	out.WriteString(strings.Join(lines[len(lines)-tailLines:], "\n"))
	return out.String()
}
