package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// BoolPtr returns a pointer to the given bool value
func BoolPtr(b bool) *bool {
	return &b
}

// jsonResult marshals v and wraps it as a text tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to marshal result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// contextResult wraps a payload with the resolved context so callers always
// see which cluster answered.
func contextResult(contextName string, key string, payload interface{}) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"context": contextName,
		key:       payload,
	})
}

// nullableStringMapArg extracts an object argument keeping explicit nulls,
// which the label and annotate tools use to delete keys.
func nullableStringMapArg(request mcp.CallToolRequest, name string) map[string]*string {
	obj := mcp.ParseStringMap(request, name, nil)
	if obj == nil {
		return nil
	}
	result := make(map[string]*string, len(obj))
	for key, value := range obj {
		if value == nil {
			result[key] = nil
			continue
		}
		if str, ok := value.(string); ok {
			s := str
			result[key] = &s
		}
	}
	return result
}
