package server

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetToolDefinitions(t *testing.T) {
	var got []string
	for _, tool := range GetToolDefinitions() {
		got = append(got, tool.Name)
	}
	want := []string{
		"image_load",
		"solar_detect_disk",
		"solar_project_point",
		"solar_grid_lines",
		"solar_grid_overlay",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool does not marshal: %v", err)
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "solar_project_point" {
			// path or disk, enforced through anyOf
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			hasPath := false
			for _, r := range required {
				if r == "path" {
					hasPath = true
				}
			}
			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_ObserverParameters(t *testing.T) {
	for _, name := range []string{"solar_project_point", "solar_grid_lines", "solar_grid_overlay"} {
		t.Run(name, func(t *testing.T) {
			tool := findTool(t, name)
			props := tool.InputSchema["properties"].(map[string]interface{})
			for _, p := range []string{"b0", "p_angle", "detector"} {
				if _, ok := props[p]; !ok {
					t.Errorf("missing property %q", p)
				}
			}
		})
	}
}

func findTool(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer()
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}

func TestSchemaSet_CompilesEveryTool(t *testing.T) {
	set := newSchemaSet(GetToolDefinitions())
	for _, tool := range GetToolDefinitions() {
		if _, err := set.schema(tool.Name); err != nil {
			t.Errorf("%s: %v", tool.Name, err)
		}
	}
}

func TestSchemaSet_Validate(t *testing.T) {
	set := newSchemaSet(GetToolDefinitions())

	tests := []struct {
		name    string
		tool    string
		args    string
		wantErr bool
	}{
		{"load ok", "image_load", `{"path":"/tmp/sun.png"}`, false},
		{"load missing path", "image_load", `{}`, true},
		{"load nil arguments", "image_load", ``, true},
		{"load path wrong type", "image_load", `{"path":42}`, true},
		{"detect with overrides", "solar_detect_disk", `{"path":"a.png","detector":"auto","hough":{"dp":2},"candidates":true}`, false},
		{"detect candidates wrong type", "solar_detect_disk", `{"path":"a.png","candidates":"yes"}`, true},
		{"project with disk", "solar_project_point", `{"disk":{"center_x":10,"center_y":10,"radius":5},"latitude":0,"longitude":0}`, false},
		{"project with path", "solar_project_point", `{"path":"a.png","latitude":30,"longitude":-45,"b0":7.2}`, false},
		{"project without disk or path", "solar_project_point", `{"latitude":0,"longitude":0}`, true},
		{"project latitude out of range", "solar_project_point", `{"path":"a.png","latitude":95,"longitude":0}`, true},
		{"project zero radius", "solar_project_point", `{"disk":{"center_x":1,"center_y":1,"radius":0},"latitude":0,"longitude":0}`, true},
		{"project incomplete disk", "solar_project_point", `{"disk":{"center_x":1},"latitude":0,"longitude":0}`, true},
		{"lines ok", "solar_grid_lines", `{"path":"a.png","step_degrees":15,"samples":91}`, false},
		{"lines fractional step", "solar_grid_lines", `{"path":"a.png","step_degrees":7.5}`, true},
		{"lines zero step", "solar_grid_lines", `{"path":"a.png","step_degrees":0}`, true},
		{"lines one sample", "solar_grid_lines", `{"path":"a.png","samples":1}`, true},
		{"overlay ok", "solar_grid_overlay", `{"path":"a.png","style":{"grid_color":"#FFFF00"},"label":"timestamp","scale":0.5}`, false},
		{"overlay negative scale", "solar_grid_overlay", `{"path":"a.png","scale":-1}`, true},
		{"unknown tool passes through", "image_crop", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := set.validate(tt.tool, json.RawMessage(tt.args))
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
