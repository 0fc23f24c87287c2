// Package server is the stdio control surface.
//
// It speaks JSON-RPC 2.0, one request per line on the input and one response
// per line on the output, with the MCP tool methods:
//   - initialize: protocol handshake
//   - tools/list: enumerate available tools
//   - tools/call: execute a tool with arguments
//   - ping: health check
//
// # Tools
//
//   - status: controller state, readiness and counters
//   - shapes_list: the currently detected circles and lines
//   - simulation_start: spawn bodies for the detected shapes
//   - simulation_stop: destroy all bodies and resume detection
//   - detect_image: run detection on a still image file
//
// Tools that read or change controller state are submitted to the tick loop
// and answered once the loop has applied them. detect_image runs on the
// server goroutine with its own detector buffers.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string as data. A rejected start or stop (no shapes, not simulating)
// is a tool failure.
package server
