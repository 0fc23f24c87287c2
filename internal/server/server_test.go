package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/rollingball/internal/controller"
	"github.com/ironsheep/rollingball/internal/detection"
	"github.com/ironsheep/rollingball/internal/geometry"
	"github.com/ironsheep/rollingball/internal/imaging"
)

// fakeControls answers every request from a canned reply.
type fakeControls struct {
	ops   []controller.Op
	reply controller.Reply
	err   error
}

func (f *fakeControls) Submit(ctx context.Context, req controller.Request) (controller.Reply, error) {
	f.ops = append(f.ops, req.Op)
	if f.err != nil {
		return controller.Reply{}, f.err
	}
	return f.reply, nil
}

func newTestServer(t *testing.T, controls Controls) *Server {
	t.Helper()
	return New(zaptest.NewLogger(t), controls,
		imaging.NewPreprocessor(imaging.DefaultCannyLow, imaging.DefaultCannyHigh),
		detection.NewDetector(detection.HoughBackend{}, detection.DefaultCircleParams(), detection.DefaultLineParams()),
		Options{ScreenWidth: 1080, ScreenHeight: 1920, Version: "test"})
}

func decodeResponses(t *testing.T, out string) []MCPResponse {
	t.Helper()
	var resps []MCPResponse
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var r MCPResponse
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		resps = append(resps, r)
	}
	return resps
}

func TestRun_Session(t *testing.T) {
	s := newTestServer(t, &fakeControls{})
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":"x","method":"bogus"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, s.Run(context.Background(), strings.NewReader(in), &out))

	resps := decodeResponses(t, out.String())
	require.Len(t, resps, 3)

	assert.Equal(t, float64(1), resps[0].ID)
	result, ok := resps[0].Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, protocolVersion, result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "rollingball", info["name"])
	assert.Equal(t, "test", info["version"])

	assert.Equal(t, float64(2), resps[1].ID)
	assert.Nil(t, resps[1].Error)

	assert.Equal(t, "x", resps[2].ID)
	require.NotNil(t, resps[2].Error)
	assert.Equal(t, -32601, resps[2].Error.Code)
}

func TestRun_CancelledContext(t *testing.T) {
	s := newTestServer(t, &fakeControls{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a reader that never ends would block forever without cancellation
	pr, pw := io.Pipe()
	defer pw.Close()

	assert.NoError(t, s.Run(ctx, pr, &bytes.Buffer{}))
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, &fakeControls{})
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.NotNil(t, resp)

	tools := resp.Result.(map[string]interface{})["tools"].([]Tool)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.Equal(t, []string{"status", "shapes_list", "simulation_start", "simulation_stop", "detect_image"}, names)
}

func TestNew_DefaultVersion(t *testing.T) {
	s := New(zaptest.NewLogger(t), &fakeControls{}, nil, nil, Options{})
	assert.Equal(t, "dev", s.opts.Version)
	assert.NotNil(t, s.cache)
}

// callTool runs a tools/call request and returns the decoded text payload or
// the error response.
func callTool(t *testing.T, s *Server, name string, args interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "tools/call", Params: raw})
	require.NotNil(t, resp)
	if resp.Error != nil {
		return nil, resp.Error
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &out))
	return out, nil
}

func sampleCircle() geometry.DetectedCircle {
	m, _ := geometry.NewMapper(640, 480, 1080, 1920, geometry.Lens{})
	return m.MapCircle(100, 50, 20)
}
