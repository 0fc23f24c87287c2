package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/ironsheep/rollingball/internal/controller"
	"github.com/ironsheep/rollingball/internal/detection"
	"github.com/ironsheep/rollingball/internal/geometry"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
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

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "status":
		return s.handleStatus(ctx)
	case "shapes_list":
		return s.handleShapesList(ctx)
	case "simulation_start":
		return s.submit(ctx, controller.OpStart)
	case "simulation_stop":
		return s.submit(ctx, controller.OpStop)
	case "detect_image":
		return s.handleDetectImage(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// statusResult is the status tool output. Shapes are reported as counts.
type statusResult struct {
	State    controller.State `json:"state"`
	Ready    bool             `json:"ready"`
	Circles  int              `json:"circles"`
	Lines    int              `json:"lines"`
	Bodies   int              `json:"bodies"`
	Ticks    uint64           `json:"ticks"`
	Passes   uint64           `json:"detection_passes"`
	CanStart bool             `json:"can_start"`
	CanStop  bool             `json:"can_stop"`
}

func newStatusResult(snap controller.Snapshot) statusResult {
	return statusResult{
		State:    snap.State,
		Ready:    snap.Ready,
		Circles:  len(snap.Circles),
		Lines:    len(snap.Lines),
		Bodies:   snap.Bodies,
		Ticks:    snap.Ticks,
		Passes:   snap.Passes,
		CanStart: snap.CanStart,
		CanStop:  snap.CanStop,
	}
}

type shapesResult struct {
	Circles []geometry.DetectedCircle `json:"circles"`
	Lines   []geometry.DetectedLine   `json:"lines"`
}

func (s *Server) snapshot(ctx context.Context) (controller.Snapshot, error) {
	reply, err := s.controls.Submit(ctx, controller.Request{Op: controller.OpSnapshot})
	if err != nil {
		return controller.Snapshot{}, errors.Wrap(err, "query controller")
	}
	return reply.Snapshot, nil
}

func (s *Server) handleStatus(ctx context.Context) (interface{}, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return newStatusResult(snap), nil
}

func (s *Server) handleShapesList(ctx context.Context) (interface{}, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return shapesResult{Circles: nonNil(snap.Circles), Lines: nonNil(snap.Lines)}, nil
}

// submit applies a start or stop and reports the resulting status.
func (s *Server) submit(ctx context.Context, op controller.Op) (interface{}, error) {
	reply, err := s.controls.Submit(ctx, controller.Request{Op: op})
	if err != nil {
		return nil, errors.Wrap(err, "submit request")
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return newStatusResult(reply.Snapshot), nil
}

type detectImageArgs struct {
	Path         string `json:"path"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
}

type detectImageResult struct {
	Backend      string                    `json:"backend"`
	ImageWidth   int                       `json:"image_width"`
	ImageHeight  int                       `json:"image_height"`
	ScreenWidth  int                       `json:"screen_width"`
	ScreenHeight int                       `json:"screen_height"`
	Circles      []geometry.DetectedCircle `json:"circles"`
	Lines        []geometry.DetectedLine   `json:"lines"`
}

func (s *Server) handleDetectImage(args json.RawMessage) (interface{}, error) {
	var a detectImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.ScreenWidth == 0 {
		a.ScreenWidth = s.opts.ScreenWidth
	}
	if a.ScreenHeight == 0 {
		a.ScreenHeight = s.opts.ScreenHeight
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := detection.DetectImage(img, s.pre, s.detector, a.ScreenWidth, a.ScreenHeight, s.opts.Lens)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return detectImageResult{
		Backend:      s.detector.Backend().Name(),
		ImageWidth:   b.Dx(),
		ImageHeight:  b.Dy(),
		ScreenWidth:  a.ScreenWidth,
		ScreenHeight: a.ScreenHeight,
		Circles:      nonNil(res.Circles),
		Lines:        nonNil(res.Lines),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
