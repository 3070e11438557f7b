package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rmax-ai/smoglight/pkg/client"
	"github.com/rmax-ai/smoglight/pkg/session"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

// Server adapts smoglight-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"smoglight",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	s.registerPrompts()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// smoglight://state
	s.mcpServer.AddResource(mcp.NewResource(
		"smoglight://state",
		"Smoglight Session State",
		mcp.WithResourceDescription("Current gas concentration levels, signal phase and vehicle count"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadState)
}

// --- Tools ---

func (s *Server) registerTools() {
	// set_signal_phase
	s.mcpServer.AddTool(mcp.NewTool(
		"set_signal_phase",
		mcp.WithDescription("Set the traffic signal phase. Red idles vehicles (emissions rise), green flows traffic (air clears)."),
		mcp.WithString("phase", mcp.Required(), mcp.Description("The signal phase: 'red' or 'green'")),
	), s.handleSetPhase)

	// set_vehicle_count
	s.mcpServer.AddTool(mcp.NewTool(
		"set_vehicle_count",
		mcp.WithDescription("Set the number of vehicles waiting at the signal."),
		mcp.WithNumber("count", mcp.Required(), mcp.Description("Vehicle count (non-negative)")),
	), s.handleSetVehicles)

	// step_simulation
	s.mcpServer.AddTool(mcp.NewTool(
		"step_simulation",
		mcp.WithDescription("Advance the simulation by one step and return the new gas levels."),
		mcp.WithNumber("dt", mcp.Description("Time step in seconds (default 1.0)")),
	), s.handleStep)

	// reset_simulation
	s.mcpServer.AddTool(mcp.NewTool(
		"reset_simulation",
		mcp.WithDescription("Reset the session to the fresh-air baseline."),
	), s.handleReset)
}

// --- Prompts ---

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt(
		"smoglight-aware",
		mcp.WithPromptDescription("Provides context about Smoglight concepts (phases, gases, decay)"),
	), s.handleGetPrompt)
}

// --- Handlers ---

func (s *Server) handleReadState(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	reading, err := s.apiClient.GetState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state: %w", err)
	}

	data, err := json.MarshalIndent(reading, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reading: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleSetPhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phase := mcp.ParseString(request, "phase", "")
	if phase != string(sim.PhaseRed) && phase != string(sim.PhaseGreen) {
		return mcp.NewToolResultError(fmt.Sprintf("phase must be 'red' or 'green', got %q", phase)), nil
	}

	reading, err := s.apiClient.SetPhase(ctx, sim.Phase(phase))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	return mcp.NewToolResultText(formatReading(reading)), nil
}

func (s *Server) handleSetVehicles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count := int(mcp.ParseFloat64(request, "count", -1))
	if count < 0 {
		return mcp.NewToolResultError("count must be a non-negative number"), nil
	}

	reading, err := s.apiClient.SetVehicles(ctx, count)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	return mcp.NewToolResultText(formatReading(reading)), nil
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dt := mcp.ParseFloat64(request, "dt", 1.0)

	reading, err := s.apiClient.Step(ctx, dt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	return mcp.NewToolResultText(formatReading(reading)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reading, err := s.apiClient.Reset(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	return mcp.NewToolResultText(formatReading(reading)), nil
}

func (s *Server) handleGetPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	if name != "smoglight-aware" {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}

	promptText := `You are interacting with Smoglight, a traffic-signal idle-emissions simulator.

Concepts:
- Phase: The signal state. 'red' means vehicles idle and emit; 'green' means traffic flows and the air clears.
- Gases: CO2 and CO accumulate while the light is red and decay while it is green. Fresh O2 is consumed on red and recovers on green.
- Levels: All three gas levels are relative values clamped to [0, 100].
- Vehicles: The number of idling vehicles scales how fast emissions build up.
- Decay: During green, CO2/CO shrink multiplicatively by a coefficient below 1.

Use 'set_signal_phase' and 'set_vehicle_count' to drive the scenario, 'step_simulation' to
advance time, and read 'smoglight://state' to observe the current levels.
`

	return mcp.NewGetPromptResult(
		"smoglight-aware",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(promptText)),
		},
	), nil
}

func formatReading(r session.Reading) string {
	return fmt.Sprintf("Phase: %s | Vehicles: %d | Tick: %d\nCO2: %.2f | CO: %.2f | Fresh O2: %.2f",
		r.Phase, r.Vehicles, r.Tick, r.State.CO2, r.State.CO, r.State.O2)
}
