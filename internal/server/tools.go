package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func noArguments() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "status",
			Description: "Report the controller state (detecting or simulating), whether the camera is ready, shape and body counts, and which of start/stop is currently allowed.",
			InputSchema: noArguments(),
		},
		{
			Name:        "shapes_list",
			Description: "List the currently detected circles and lines in image, screen and world coordinates.",
			InputSchema: noArguments(),
		},
		{
			Name:        "simulation_start",
			Description: "Spawn one physics body per detected shape and pause detection. Fails when nothing is detected or a simulation is already running.",
			InputSchema: noArguments(),
		},
		{
			Name:        "simulation_stop",
			Description: "Destroy all physics bodies and resume detection. Fails when no simulation is running.",
			InputSchema: noArguments(),
		},
		{
			Name:        "detect_image",
			Description: "Run circle and line detection on a still image file and map the results to screen and world coordinates, as if the image had come from the camera.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"screen_width": map[string]interface{}{
						"type":        "integer",
						"description": "Screen width in pixels. Defaults to the configured screen",
					},
					"screen_height": map[string]interface{}{
						"type":        "integer",
						"description": "Screen height in pixels. Defaults to the configured screen",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
