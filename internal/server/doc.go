// Package server implements the MCP (Model Context Protocol) server for band
// image sequences.
//
// A sequence is a folder (or list) of image files that are really horizontal
// bands of one very tall image, such as the strips written by a line-scan
// camera. The server lets an MCP client address the whole stack with global
// coordinates while only a bounded number of bands is ever decoded.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Sequence lifecycle:
//   - sequence_open: Open a folder or path list, report shape and bands
//   - sequence_close: Close a sequence and free its cached bands
//
// Lookups:
//   - sequence_locate: Map a global row to band and local row
//   - sequence_get_pixel: Raw samples at a global coordinate
//   - sequence_sample_color: Color at one or more global coordinates
//   - sequence_dominant_colors: Most common colors in a region
//
// Regions:
//   - sequence_crop: Region across bands as base64 PNG
//   - sequence_export: Region across bands written to a file
//   - sequence_overlay: Region with global grid and band boundaries
//   - sequence_edges: Edge map of a region
//   - sequence_compare_regions: Pixel diff of two regions
//
// Calibration:
//   - calibration_fit: Define a named linear calibration
//   - calibration_apply: Map values through a calibration
//   - sequence_measure: Pixel and calibrated distance between two points
//
// # Sequence Store
//
// Opened sequences are kept by folder path (or by the name given for a path
// list) until sequence_close or server shutdown. Tools given a folder that is
// not open yet open it first. Calibrations are kept by name for the lifetime
// of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithConfig(cfg), server.WithLogger(log))
//	if err := srv.Run(); err != nil {
//	    log.Errorf("server error: %v", err)
//	}
package server
