package server

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/ironsheep/solar-grid-mcp/internal/detection"
	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/helio"
	"github.com/ironsheep/solar-grid-mcp/internal/imaging"
	"github.com/ironsheep/solar-grid-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "solar_detect_disk").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Arguments that do not match the tool's input schema return -32602. Tool
// execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if err := s.schemas.validate(params.Name, params.Arguments); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.Debug {
		log.Printf("tool %s finished in %s (err=%v)", params.Name, time.Since(start).Round(time.Millisecond), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each solar handler:
//  1. Unmarshals arguments from JSON
//  2. Layers them over the server's options for this call only
//  3. Loads the grayscale plane from the cache
//  4. Runs detection, projection or rendering
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "solar_detect_disk":
		return s.handleDetectDisk(args)
	case "solar_project_point":
		return s.handleProjectPoint(args)
	case "solar_grid_lines":
		return s.handleGridLines(args)
	case "solar_grid_overlay":
		return s.handleGridOverlay(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// overrideArgs are the per-call option overrides shared by the solar tools.
// Nil fields keep the server's configured value.
type overrideArgs struct {
	Detector    string          `json:"detector"`
	Hough       json.RawMessage `json:"hough"`
	Contour     json.RawMessage `json:"contour"`
	StepDegrees *int            `json:"step_degrees"`
	Samples     *int            `json:"samples"`
	B0          *float64        `json:"b0"`
	PAngle      *float64        `json:"p_angle"`
	Style       json.RawMessage `json:"style"`
	Label       *string         `json:"label"`
}

// options layers a over the server options. Tuning objects are decoded onto
// the configured values, so a call only names the fields it changes.
func (s *Server) options(a overrideArgs) (pipeline.Options, error) {
	opts := s.opts
	if a.Detector != "" {
		opts.Detector = a.Detector
	}
	if len(a.Hough) > 0 {
		if err := json.Unmarshal(a.Hough, &opts.Hough); err != nil {
			return pipeline.Options{}, fmt.Errorf("%w: hough: %v", geometry.ErrInvalidInput, err)
		}
	}
	if len(a.Contour) > 0 {
		// Decoding writes through a non-nil pointer; keep the server's own.
		if fixed := opts.Contour.FixedThreshold; fixed != nil {
			level := *fixed
			opts.Contour.FixedThreshold = &level
		}
		if err := json.Unmarshal(a.Contour, &opts.Contour); err != nil {
			return pipeline.Options{}, fmt.Errorf("%w: contour: %v", geometry.ErrInvalidInput, err)
		}
	}
	if a.StepDegrees != nil {
		opts.Grid.StepDegrees = *a.StepDegrees
	}
	if a.Samples != nil {
		opts.Grid.Samples = *a.Samples
	}
	if a.B0 != nil {
		opts.Grid.Observer.B0 = *a.B0
	}
	if a.PAngle != nil {
		opts.Grid.Observer.P = *a.PAngle
	}
	if len(a.Style) > 0 {
		if err := json.Unmarshal(a.Style, &opts.Style); err != nil {
			return pipeline.Options{}, fmt.Errorf("%w: style: %v", geometry.ErrInvalidInput, err)
		}
	}
	if a.Label != nil {
		opts.Style.Label = *a.Label
	}
	if err := opts.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// analyze runs detection and grid construction on the cached plane of path.
func (s *Server) analyze(path string, opts pipeline.Options) (*pipeline.Result, error) {
	gray, err := s.cache.LoadGray(path)
	if err != nil {
		return nil, err
	}
	return pipeline.AnalyzeGray(gray, opts)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection Handlers ===

type detectDiskArgs struct {
	Path       string `json:"path"`
	Candidates bool   `json:"candidates"`
	overrideArgs
}

// DetectDiskResult is the result of solar_detect_disk.
type DetectDiskResult struct {
	Disk     geometry.Disk `json:"disk"`
	Detector string        `json:"detector"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`

	// Candidates lists every circle-fit candidate, strongest first, when
	// requested.
	Candidates []detection.Candidate `json:"candidates,omitempty"`
}

func (s *Server) handleDetectDisk(args json.RawMessage) (interface{}, error) {
	var a detectDiskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.overrideArgs)
	if err != nil {
		return nil, err
	}
	gray, err := s.cache.LoadGray(a.Path)
	if err != nil {
		return nil, err
	}

	det, err := opts.NewDetector()
	if err != nil {
		return nil, err
	}
	disk, used, err := detection.Run(det, gray)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", det.Name(), err)
	}

	result := &DetectDiskResult{
		Disk:     disk,
		Detector: used,
		Width:    gray.Bounds().Dx(),
		Height:   gray.Bounds().Dy(),
	}
	if a.Candidates {
		candidates, err := detection.NewCircleFitDetector(opts.Hough).Candidates(gray)
		if err != nil {
			return nil, err
		}
		result.Candidates = candidates
	}
	return result, nil
}

// === Projection Handlers ===

type projectPointArgs struct {
	Path      string         `json:"path"`
	Disk      *geometry.Disk `json:"disk"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	overrideArgs
}

// ProjectPointResult is the result of solar_project_point.
type ProjectPointResult struct {
	Disk geometry.Disk `json:"disk"`

	// X and Y are the exact projected position.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// PixelX and PixelY are X and Y rounded to the nearest pixel.
	PixelX int `json:"pixel_x"`
	PixelY int `json:"pixel_y"`

	// Visible is false for points on the far side of the Sun.
	Visible bool `json:"visible"`

	// InBounds is reported only when the image size is known, i.e. when
	// the disk was detected from path.
	InBounds *bool `json:"in_bounds,omitempty"`
}

func (s *Server) handleProjectPoint(args json.RawMessage) (interface{}, error) {
	var a projectPointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	coord := helio.Coordinate{Latitude: a.Latitude, Longitude: a.Longitude}
	if err := coord.Validate(); err != nil {
		return nil, err
	}
	opts, err := s.options(a.overrideArgs)
	if err != nil {
		return nil, err
	}

	var (
		disk          geometry.Disk
		width, height int
	)
	switch {
	case a.Disk != nil:
		disk = *a.Disk
	case a.Path != "":
		res, err := s.analyze(a.Path, opts)
		if err != nil {
			return nil, err
		}
		disk, width, height = res.Disk, res.Width, res.Height
	default:
		return nil, fmt.Errorf("%w: either path or disk is required", geometry.ErrInvalidInput)
	}

	proj, err := helio.NewProjector(disk, opts.Grid.Observer)
	if err != nil {
		return nil, err
	}
	pt, front := proj.Project(coord)
	px := helio.ToPixel(pt, width, height)

	result := &ProjectPointResult{
		Disk:    disk,
		X:       pt.X,
		Y:       pt.Y,
		PixelX:  px.X,
		PixelY:  px.Y,
		Visible: front,
	}
	if width > 0 {
		result.InBounds = &px.Visible
	}
	return result, nil
}

// === Grid Handlers ===

type gridLinesArgs struct {
	Path string `json:"path"`
	overrideArgs
}

// GridLineResult is one grid line as the pixel polylines a client can draw
// directly.
type GridLineResult struct {
	Kind     helio.LineKind `json:"kind"`
	Degrees  float64        `json:"degrees"`
	Segments [][][2]int     `json:"segments"`
}

// GridLinesResult is the result of solar_grid_lines.
type GridLinesResult struct {
	Disk     geometry.Disk    `json:"disk"`
	Detector string           `json:"detector"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Lines    []GridLineResult `json:"lines"`
}

func (s *Server) handleGridLines(args json.RawMessage) (interface{}, error) {
	var a gridLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := s.options(a.overrideArgs)
	if err != nil {
		return nil, err
	}
	res, err := s.analyze(a.Path, opts)
	if err != nil {
		return nil, err
	}

	lines := make([]GridLineResult, 0, len(res.Lines))
	for _, l := range res.Lines {
		segs := l.Segments()
		out := make([][][2]int, 0, len(segs))
		for _, seg := range segs {
			pts := make([][2]int, len(seg))
			for i, p := range seg {
				pts[i] = [2]int{p.X, p.Y}
			}
			out = append(out, pts)
		}
		lines = append(lines, GridLineResult{Kind: l.Kind, Degrees: l.Degrees, Segments: out})
	}

	return &GridLinesResult{
		Disk:     res.Disk,
		Detector: res.Detector,
		Width:    res.Width,
		Height:   res.Height,
		Lines:    lines,
	}, nil
}

type gridOverlayArgs struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
	overrideArgs
}

// GridOverlayResult is the result of solar_grid_overlay.
type GridOverlayResult struct {
	Disk     geometry.Disk `json:"disk"`
	Detector string        `json:"detector"`
	*imaging.EncodedImage
}

func (s *Server) handleGridOverlay(args json.RawMessage) (interface{}, error) {
	var a gridOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	opts, err := s.options(a.overrideArgs)
	if err != nil {
		return nil, err
	}
	label, err := pipeline.ResolveLabel(opts.Style.Label, a.Path)
	if err != nil {
		return nil, err
	}
	opts.Style.Label = label

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := s.analyze(a.Path, opts)
	if err != nil {
		return nil, err
	}
	out, err := pipeline.Render(img, res, opts.Style)
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(out, a.Scale)
	if err != nil {
		return nil, err
	}
	return &GridOverlayResult{
		Disk:         res.Disk,
		Detector:     res.Detector,
		EncodedImage: encoded,
	}, nil
}
