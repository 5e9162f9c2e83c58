package schema

import "testing"

func TestToolCall_Fields(t *testing.T) {
	tests := []struct {
		name     string
		tc       ToolCall
		wantID   string
		wantName string
		wantArgs string
	}{
		{
			name:     "fully_populated",
			tc:       ToolCall{ID: "call-123", Name: "search", Arguments: `{"query":"test"}`},
			wantID:   "call-123",
			wantName: "search",
			wantArgs: `{"query":"test"}`,
		},
		{
			name:     "empty_arguments",
			tc:       ToolCall{ID: "call-456", Name: "get_time", Arguments: ""},
			wantID:   "call-456",
			wantName: "get_time",
			wantArgs: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tc.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", tt.tc.ID, tt.wantID)
			}
			if tt.tc.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.tc.Name, tt.wantName)
			}
			if tt.tc.Arguments != tt.wantArgs {
				t.Errorf("Arguments = %q, want %q", tt.tc.Arguments, tt.wantArgs)
			}
		})
	}
}

func TestToolCall_ZeroValue(t *testing.T) {
	var tc ToolCall
	if tc.ID != "" || tc.Name != "" || tc.Arguments != "" {
		t.Errorf("zero ToolCall not empty: %+v", tc)
	}
}

func TestToolResult_Fields(t *testing.T) {
	tests := []struct {
		name        string
		tr          ToolResult
		wantCallID  string
		wantContent string
		wantIsError bool
	}{
		{
			name:        "success_result",
			tr:          ToolResult{ToolCallID: "call-123", Content: "result data", IsError: false},
			wantCallID:  "call-123",
			wantContent: "result data",
			wantIsError: false,
		},
		{
			name:        "error_result",
			tr:          ToolResult{ToolCallID: "call-456", Content: "tool execution failed", IsError: true},
			wantCallID:  "call-456",
			wantContent: "tool execution failed",
			wantIsError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tr.ToolCallID != tt.wantCallID {
				t.Errorf("ToolCallID = %q, want %q", tt.tr.ToolCallID, tt.wantCallID)
			}
			if tt.tr.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", tt.tr.Content, tt.wantContent)
			}
			if tt.tr.IsError != tt.wantIsError {
				t.Errorf("IsError = %v, want %v", tt.tr.IsError, tt.wantIsError)
			}
		})
	}
}

func TestToolResult_ZeroValue(t *testing.T) {
	var tr ToolResult
	if tr.ToolCallID != "" || tr.Content != "" || tr.IsError {
		t.Errorf("zero ToolResult not empty: %+v", tr)
	}
}

func TestToolDefinition_Fields(t *testing.T) {
	tests := []struct {
		name       string
		td         ToolDefinition
		wantName   string
		wantDesc   string
		wantSchema bool
	}{
		{
			name: "fully_populated",
			td: ToolDefinition{
				Name:        "search",
				Description: "Search the web for information",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{"type": "string", "description": "The search query"},
					},
					"required": []any{"query"},
				},
			},
			wantName:   "search",
			wantDesc:   "Search the web for information",
			wantSchema: true,
		},
		{
			name: "no_schema",
			td: ToolDefinition{
				Name:        "get_time",
				Description: "Get the current time",
				InputSchema: nil,
			},
			wantName:   "get_time",
			wantDesc:   "Get the current time",
			wantSchema: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.td.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.td.Name, tt.wantName)
			}
			if tt.td.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", tt.td.Description, tt.wantDesc)
			}
			hasSchema := tt.td.InputSchema != nil
			if hasSchema != tt.wantSchema {
				t.Errorf("has InputSchema = %v, want %v", hasSchema, tt.wantSchema)
			}
		})
	}
}

func TestToolDefinition_ZeroValue(t *testing.T) {
	var td ToolDefinition
	if td.Name != "" || td.Description != "" || td.InputSchema != nil {
		t.Errorf("zero ToolDefinition not empty: %+v", td)
	}
}

func TestToolDefinition_SchemaAccess(t *testing.T) {
	td := ToolDefinition{
		Name: "calculate",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"expression": map[string]any{"type": "string"},
			},
		},
	}

	schemaType, ok := td.InputSchema["type"].(string)
	if !ok || schemaType != "object" {
		t.Errorf("InputSchema[\"type\"] = %v, want %q", td.InputSchema["type"], "object")
	}

	props, ok := td.InputSchema["properties"].(map[string]any)
	if !ok {
		t.Fatal("InputSchema[\"properties\"] is not map[string]any")
	}
	if _, ok := props["expression"]; !ok {
		t.Error("InputSchema missing 'expression' property")
	}
}
