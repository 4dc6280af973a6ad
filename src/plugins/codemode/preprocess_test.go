package codemode

import (
	"strings"
	"testing"
)

func TestConvertOutWalrus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple __out :=",
			input:    "__out := 5",
			expected: "__out = 5",
		},
		{
			name:     "__out := at start of line with spaces",
			input:    "  __out := \"hello\"",
			expected: "  __out = \"hello\"",
		},
		{
			name:     "multi-variable with __out first should NOT convert",
			input:    "__out, err := toolhub.GetTool(\"test\")",
			expected: "__out, err := toolhub.GetTool(\"test\")",
		},
		{
			name:     "nested in if block",
			input:    "if true {\n\t__out := 42\n}",
			expected: "if true {\n\t__out = 42\n}",
		},
		{
			name:     "other variable declarations should not be affected",
			input:    "tool, err := toolhub.GetTool(\"test\")",
			expected: "tool, err := toolhub.GetTool(\"test\")",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := convertOutWalrus(tc.input)
			if result != tc.expected {
				t.Errorf("convertOutWalrus() = %q, want %q", result, tc.expected)
			}
		})
	}
}

func TestPreprocessUserCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple assignment",
			input:    "5 + 3",
			expected: "__out = 5 + 3",
		},
		{
			name:     "__out := should be converted",
			input:    "__out := 42",
			expected: "__out = 42",
		},
		{
			name:     "var __out is dropped",
			input:    "var __out any\n__out = 1",
			expected: "\n__out = 1",
		},
		{
			name:     "multi-line with __out, err :=",
			input:    "__out, err := toolhub.GetTool(\"test\")\nif err != nil { }",
			expected: "__out, err := toolhub.GetTool(\"test\")\nif err != nil { }",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := preprocessUserCode(tc.input)
			if result != tc.expected {
				t.Errorf("preprocessUserCode() = %q, want %q", result, tc.expected)
			}
		})
	}
}

func TestPreprocessUserCode_JSONObject(t *testing.T) {
	got := preprocessUserCode(`{"mock": "response"}`)
	if !strings.HasPrefix(got, "__out = map[string]interface {}{") || !strings.Contains(got, `"mock":"response"`) {
		t.Errorf("unexpected conversion %q", got)
	}
}
