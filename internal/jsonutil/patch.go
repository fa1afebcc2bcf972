// ABOUTME: Surgical JSON patching for corrective retry examples, so a guard
// ABOUTME: can show "here is your JSON with the one broken field fixed" without re-serializing the whole object.
package jsonutil

import "github.com/tidwall/sjson"

// SetString returns raw with the value at path replaced by value, preserving
// key order and formatting of everything else. If raw is not valid JSON or
// the set fails, raw is returned unchanged.
func SetString(raw []byte, path, value string) []byte {
	out, err := sjson.SetBytes(raw, path, value)
	if err != nil {
		return raw
	}
	return out
}

// Delete returns raw with the value at path removed.
func Delete(raw []byte, path string) []byte {
	out, err := sjson.DeleteBytes(raw, path)
	if err != nil {
		return raw
	}
	return out
}
