// ABOUTME: Natural-language summary of a form's required fields, used to seed the greeting node's opener.
package formcontext

import "fmt"

// SummarizeByType renders a short phrase describing requiredFields' type
// mix, e.g. "about 15 items — a few dropdowns, some dates, and a couple of
// text fields". Deterministic: the same field-type map always
// produces the same summary text.
func SummarizeByType(requiredFields []string, fieldTypes map[string]FieldType) string {
	if len(requiredFields) == 0 {
		return "no required fields"
	}

	counts := map[FieldType]int{}
	for _, id := range requiredFields {
		counts[fieldTypes[id]]++
	}

	var parts []string
	order := []FieldType{FieldDropdown, FieldCheckbox, FieldDate, FieldDatetime, FieldLocation, FieldTime, FieldFile, FieldText}
	for _, ft := range order {
		n := counts[ft]
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", quantifier(n), pluralize(ft, n)))
	}

	countPhrase := fmt.Sprintf("about %d item", len(requiredFields))
	if len(requiredFields) != 1 {
		countPhrase += "s"
	}
	if len(parts) == 0 {
		return countPhrase
	}
	return countPhrase + " — " + joinNaturally(parts)
}

func quantifier(n int) string {
	switch {
	case n == 1:
		return "a"
	case n == 2:
		return "a couple of"
	case n <= 4:
		return "a few"
	default:
		return "some"
	}
}

func pluralize(ft FieldType, n int) string {
	label := string(ft)
	switch ft {
	case FieldDropdown:
		label = "dropdown"
	case FieldCheckbox:
		label = "checkbox"
	case FieldDate:
		label = "date"
	case FieldDatetime:
		label = "datetime"
	case FieldLocation:
		label = "location"
	case FieldTime:
		label = "time"
	case FieldFile:
		label = "file upload"
	case FieldText:
		label = "text field"
	}
	if n == 1 {
		return label
	}
	return label + "s"
}

func joinNaturally(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	out := parts[0]
	for i := 1; i < len(parts)-1; i++ {
		out += ", " + parts[i]
	}
	out += ", and " + parts[len(parts)-1]
	return out
}
