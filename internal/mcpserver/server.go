// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the skill-gap planner to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/level"
	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/planservice"
)

// defaultCandidateLimit caps score_candidates output unless the caller asks
// for more.
const defaultCandidateLimit = 10

// Server wraps the MCP server with planner tools.
type Server struct {
	mcp *server.MCPServer
	svc *planservice.Service
}

// New creates a new MCP server with all planner tools registered.
func New(svc *planservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Skill Gap Planner",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_goals",
		mcp.WithDescription("List the strategic goals with their target dates, headcount targets and required skills."),
	), s.listGoals)

	s.mcp.AddTool(mcp.NewTool("gap_overview",
		mcp.WithDescription("Coverage versus headcount target for every goal requirement, plus the shortfall."),
	), s.gapOverview)

	s.mcp.AddTool(mcp.NewTool("score_candidates",
		mcp.WithDescription("Rank employees for one goal requirement by readiness, then risk, then time-to-readiness."),
		mcp.WithString("cap_id", mcp.Required(), mcp.Description("Goal id, e.g. cap.ml_platform")),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill id, e.g. skill.mlops")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 10)")),
	), s.scoreCandidates)

	s.mcp.AddTool(mcp.NewTool("build_roadmap",
		mcp.WithDescription("Build the remediation roadmap that takes one employee to a goal's target level."),
		mcp.WithString("cap_id", mcp.Required(), mcp.Description("Goal id")),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill id")),
		mcp.WithString("employee_id", mcp.Required(), mcp.Description("Employee id")),
	), s.buildRoadmap)

	s.mcp.AddTool(coverageTool(), s.coverage)

	s.mcp.AddTool(mcp.NewTool("get_strategy_contract",
		mcp.WithDescription("Returns the strategy document format. "+
			"Read it before writing or editing strategy.md so goals parse correctly."),
	), s.getStrategyContract)

	s.mcp.AddResource(strategyFormatResource(), s.readStrategyFormatResource)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goals := s.svc.Goals(ctx)
	if len(goals) == 0 {
		return mcp.NewToolResultText("no goals found"), nil
	}
	return jsonResult(goals)
}

func (s *Server) gapOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ov := s.svc.Overview(ctx)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d employees)\n", ov.Title, ov.Employees)
	for _, g := range ov.GapBlocks {
		fmt.Fprintf(&b, "%s / %s: %d of %d at %s or above, shortfall %d, due %s\n",
			g.CapName, g.SkillName, g.CurrentCoverage, g.HeadcountTarget, g.TargetLevel, g.Shortfall, g.Deadline)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) scoreCandidates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capID, err := req.RequireString("cap_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	skillID, err := req.RequireString("skill_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultCandidateLimit)

	list, err := s.svc.Candidates(ctx, capID, skillID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit > 0 && len(list.Rows) > limit {
		list.Rows = list.Rows[:limit]
	}
	return jsonResult(list)
}

func (s *Server) buildRoadmap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capID, err := req.RequireString("cap_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	skillID, err := req.RequireString("skill_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	empID, err := req.RequireString("employee_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	view, err := s.svc.Roadmap(ctx, capID, skillID, empID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func coverageTool() mcp.Tool {
	names := make([]string, 0, len(level.All()))
	for _, l := range level.All() {
		names = append(names, l.String())
	}
	return mcp.NewTool("coverage",
		mcp.WithDescription("Count employees at or above a level in a skill."),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill id")),
		mcp.WithString("level", mcp.Enum(names...), mcp.Description("Ordinal level (default Novice)")),
	)
}

func (s *Server) coverage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skillID, err := req.RequireString("skill_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lvl := level.Parse(req.GetString("level", ""))
	n := s.svc.Coverage(ctx, skillID, lvl.String())
	return mcp.NewToolResultText(fmt.Sprintf("%d employee(s) at %s or above in %s", n, lvl, skillID)), nil
}
