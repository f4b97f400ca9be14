package system

import "github.com/tidwall/gjson"

// ExtractField returns the value of a top-level field of a flat JSON object.
// String values are returned unquoted; other scalars in their raw form.
func ExtractField(json, name string) (string, bool) {
	if json == "" || name == "" {
		return "", false
	}
	result := gjson.Get(json, gjson.Escape(name))
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}

// ExtractCode returns the "code" field of a compile/run request body.
func ExtractCode(json string) (string, bool) {
	return ExtractField(json, "code")
}
