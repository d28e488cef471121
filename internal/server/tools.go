package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the full-disk image file",
	}
}

func detectorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Detector strategy: circle-fit (Hough), contour-fit (Otsu + minimal enclosing circle) or auto (circle-fit, then contour-fit). Defaults to the server configuration.",
	}
}

func stepProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     1,
		"maximum":     90,
		"description": "Grid spacing in degrees. Default from the server configuration (10)",
	}
}

func diskProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "A previously detected disk in pixels",
		"properties": map[string]interface{}{
			"center_x": map[string]interface{}{"type": "number"},
			"center_y": map[string]interface{}{"type": "number"},
			"radius":   map[string]interface{}{"type": "number", "exclusiveMinimum": 0},
		},
		"required": []string{"center_x", "center_y", "radius"},
	}
}

func observerProperties(props map[string]interface{}) map[string]interface{} {
	props["b0"] = map[string]interface{}{
		"type":        "number",
		"minimum":     -90,
		"maximum":     90,
		"description": "Heliographic latitude of the disk center in degrees. Default 0",
	}
	props["p_angle"] = map[string]interface{}{
		"type":        "number",
		"description": "Position angle of the solar rotation axis in degrees, counter-clockwise from image up. Default 0",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent solar tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "solar_detect_disk",
			Description: "Detect the solar disk in a full-disk image and return its center and radius in pixels. Fails when no disk is found rather than guessing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"detector": detectorProperty(),
					"hough": map[string]interface{}{
						"type":        "object",
						"description": "Overrides for the circle-fit tuning (blur_kernel, blur_sigma, dp, min_dist_fraction, min_radius_fraction, max_radius_fraction, edge_threshold, accumulator_threshold, disable_refine, refine_band)",
					},
					"contour": map[string]interface{}{
						"type":        "object",
						"description": "Overrides for the contour-fit tuning (blur_kernel, blur_sigma, close_kernel, fixed_threshold)",
					},
					"candidates": map[string]interface{}{
						"type":        "boolean",
						"description": "Also list every circle-fit candidate with its votes. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "solar_project_point",
			Description: "Project a heliographic latitude/longitude onto the solar disk and return its pixel position. Give either an image path (the disk is detected) or a disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": observerProperties(map[string]interface{}{
					"path": pathProperty(),
					"disk": diskProperty(),
					"latitude": map[string]interface{}{
						"type":        "number",
						"minimum":     -90,
						"maximum":     90,
						"description": "Heliographic latitude in degrees, positive north (up)",
					},
					"longitude": map[string]interface{}{
						"type":        "number",
						"minimum":     -90,
						"maximum":     90,
						"description": "Heliographic longitude in degrees from the central meridian, positive west (right)",
					},
					"detector": detectorProperty(),
				}),
				"required": []string{"latitude", "longitude"},
				"anyOf": []interface{}{
					map[string]interface{}{"required": []string{"path"}},
					map[string]interface{}{"required": []string{"disk"}},
				},
			},
		},
		{
			Name:        "solar_grid_lines",
			Description: "Detect the solar disk and return the heliographic grid as pixel polylines, already split where the grid leaves the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": observerProperties(map[string]interface{}{
					"path":         pathProperty(),
					"step_degrees": stepProperty(),
					"samples": map[string]interface{}{
						"type":        "integer",
						"minimum":     2,
						"description": "Samples per grid line across [-90, 90]. Default 181",
					},
					"detector": detectorProperty(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "solar_grid_overlay",
			Description: "Detect the solar disk, draw the limb, center and heliographic grid on the image, and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": observerProperties(map[string]interface{}{
					"path":         pathProperty(),
					"step_degrees": stepProperty(),
					"detector":     detectorProperty(),
					"style": map[string]interface{}{
						"type":        "object",
						"description": "Overrides for grid_color, limb_color, center_color, label_color, shadow_color (#RRGGBB), grid_width, limb_width, center_radius, hide_limb, hide_center",
					},
					"label": map[string]interface{}{
						"type":        "string",
						"description": "Text for the bottom-left label, or \"timestamp\" for the file's modification time in UTC. Default none",
					},
					"scale": map[string]interface{}{
						"type":             "number",
						"exclusiveMinimum": 0,
						"description":      "Scale factor for the returned PNG (e.g., 0.25 for a preview of a 4k image). Default 1.0",
						"default":          1.0,
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
