package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Schema fragments shared by several tools.
var (
	sequenceProp = map[string]interface{}{
		"type":        "string",
		"description": "Folder of band images, or the name given to sequence_open. A folder that is not open yet is opened on first use.",
	}
	whiteProp = map[string]interface{}{
		"type":        "number",
		"description": "Optional sample value shown as full intensity. Defaults to the bit depth maximum (255 or 65535).",
	}
	regionProp = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
)

// regionSchema is the schema of a tool taking a sequence and a global region.
func regionSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"sequence": sequenceProp,
		"x1": map[string]interface{}{
			"type":        "integer",
			"description": "Left edge X coordinate (0-based)",
		},
		"y1": map[string]interface{}{
			"type":        "integer",
			"description": "Top edge global row (0-based)",
		},
		"x2": map[string]interface{}{
			"type":        "integer",
			"description": "Right edge X coordinate (exclusive)",
		},
		"y2": map[string]interface{}{
			"type":        "integer",
			"description": "Bottom edge global row (exclusive)",
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
			"default":     1.0,
		},
		"white": whiteProp,
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"sequence", "x1", "y1", "x2", "y2"}, required...),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Sequence lifecycle
		{
			Name:        "sequence_open",
			Description: "Open a folder of band images (sorted by file name) or an explicit list of band files as one tall image. Reads only file headers and returns the overall shape and every band's offset and size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"folder": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a folder of band images",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Band files in top-to-bottom order. Use instead of folder.",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Name to refer to a path-list sequence in later calls. Required with paths.",
					},
				},
			},
		},
		{
			Name:        "sequence_close",
			Description: "Close a sequence and free its cached bands.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
				},
				"required": []string{"sequence"},
			},
		},

		// Lookups
		{
			Name:        "sequence_locate",
			Description: "Find which band holds a global row and the row's index within that band.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Global row (0-based)",
					},
				},
				"required": []string{"sequence", "y"},
			},
		},
		{
			Name:        "sequence_get_pixel",
			Description: "Read raw sample values at a global coordinate, in the band's native depth. Returns one channel when channel is given, otherwise all channels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Global row (0-based)",
					},
					"channel": map[string]interface{}{
						"type":        "integer",
						"description": "Optional channel index (0-based)",
					},
				},
				"required": []string{"sequence", "x", "y"},
			},
		},
		{
			Name:        "sequence_sample_color",
			Description: "Get the color at a global coordinate in hex, RGB, RGBA and HSL. Pass points to sample several labeled coordinates at once.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Global row (0-based)",
					},
					"points": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
						"description": "Optional list of points; x and y are ignored when given",
					},
					"white": whiteProp,
				},
				"required": []string{"sequence"},
			},
		},
		{
			Name:        "sequence_dominant_colors",
			Description: "List the most common colors in a region of the sequence (whole sequence by default, subject to the render size limit).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
					"region": regionProp,
					"white":  whiteProp,
				},
				"required": []string{"sequence"},
			},
		},

		// Regions
		{
			Name:        "sequence_crop",
			Description: "Crop a region spanning any number of bands and return it as base64-encoded PNG.",
			InputSchema: regionSchema(nil),
		},
		{
			Name:        "sequence_export",
			Description: "Render a region spanning any number of bands and write it to a PNG, JPEG or BMP file chosen by the output extension.",
			InputSchema: regionSchema(map[string]interface{}{
				"output": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the file to write (.png, .jpg, .jpeg or .bmp)",
				},
			}, "output"),
		},
		{
			Name:        "sequence_overlay",
			Description: "Render a region with a coordinate grid in global coordinates and a line where each band starts. Useful for locating features and seams.",
			InputSchema: regionSchema(map[string]interface{}{
				"grid_spacing": map[string]interface{}{
					"type":        "integer",
					"description": "Grid pitch in pixels. Default 100",
					"default":     100,
				},
				"show_coordinates": map[string]interface{}{
					"type":        "boolean",
					"description": "Label grid crossings with global coordinates. Default true",
					"default":     true,
				},
				"grid_color": map[string]interface{}{
					"type":        "string",
					"description": "Grid color as #RRGGBB. Default #FF0000",
				},
				"show_bands": map[string]interface{}{
					"type":        "boolean",
					"description": "Mark the first row of each band. Default true",
					"default":     true,
				},
			}),
		},
		{
			Name:        "sequence_edges",
			Description: "Detect edges in a region (Gaussian blur, Sobel, threshold) and return the edge map as base64 PNG with the share of edge pixels.",
			InputSchema: regionSchema(map[string]interface{}{
				"threshold": map[string]interface{}{
					"type":        "integer",
					"description": "Gradient magnitude (0-255) at or above which a pixel is an edge. Default 128",
					"default":     128,
				},
				"blur_radius": map[string]interface{}{
					"type":        "number",
					"description": "Gaussian radius applied first; 0 disables. Default 1.0",
					"default":     1.0,
				},
			}),
		},
		{
			Name:        "sequence_compare_regions",
			Description: "Compare two regions of the sequence pixel by pixel, for example the same area in neighbouring bands.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
					"region1":  regionProp,
					"region2":  regionProp,
					"white":    whiteProp,
				},
				"required": []string{"sequence", "region1", "region2"},
			},
		},

		// Calibration
		{
			Name:        "calibration_fit",
			Description: "Define a named linear calibration v*slope + intercept, either from explicit coefficients or fitted to evenly spaced samples (slope = (max-min)/(n-1), intercept = min).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Name used by calibration_apply and sequence_measure",
					},
					"samples": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "At least two finite samples",
					},
					"slope": map[string]interface{}{
						"type":        "number",
						"description": "Explicit slope; requires intercept",
					},
					"intercept": map[string]interface{}{
						"type":        "number",
						"description": "Explicit intercept; requires slope",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "calibration_apply",
			Description: "Map values through a named calibration, raw to calibrated, or calibrated to raw with inverse.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Calibration name",
					},
					"values": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "number"},
					},
					"inverse": map[string]interface{}{
						"type":        "boolean",
						"description": "Map calibrated values back to raw. Default false",
						"default":     false,
					},
				},
				"required": []string{"name", "values"},
			},
		},
		{
			Name:        "sequence_measure",
			Description: "Measure between two global coordinates in pixels and, with calibrations, in physical units.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sequence": sequenceProp,
					"x1":       map[string]interface{}{"type": "integer"},
					"y1":       map[string]interface{}{"type": "integer"},
					"x2":       map[string]interface{}{"type": "integer"},
					"y2":       map[string]interface{}{"type": "integer"},
					"x_calibration": map[string]interface{}{
						"type":        "string",
						"description": "Optional calibration for columns. Identity when omitted",
					},
					"y_calibration": map[string]interface{}{
						"type":        "string",
						"description": "Optional calibration for global rows. Identity when omitted",
					},
				},
				"required": []string{"sequence", "x1", "y1", "x2", "y2"},
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
