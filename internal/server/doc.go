// Package server implements the MCP (Model Context Protocol) server for
// solar disk detection and heliographic grid tools.
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
//   - image_load: Load an image and get its metadata
//   - solar_detect_disk: Find the disk center and radius
//   - solar_project_point: Project a latitude/longitude to pixels
//   - solar_grid_lines: Grid polylines clipped to the image
//   - solar_grid_overlay: Annotated image as base64 PNG
//
// Every solar tool starts from the options the server was created with
// (see pipeline.LoadOptions) and applies the call's arguments on top, for
// that call only.
//
// # Image Caching
//
// Decoded images and their grayscale planes are cached by path, so
// detecting a disk and then requesting its overlay decodes the file once.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
//   - -32700: the request line is not JSON
//   - -32602: params or tool arguments do not match the tool's input schema
//   - -32601: unknown method
//   - -32000: the tool failed; data carries the Go error string, such as
//     "circle-fit: solar disk not detected: ..."
//
// # Usage
//
//	opts, err := pipeline.LoadOptions(os.Getenv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(opts).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
