package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/strategy"
)

// StrategyFormatURI is the resource URI of the strategy document contract.
const StrategyFormatURI = "skillgap://strategy-format"

func strategyFormatResource() mcp.Resource {
	return mcp.NewResource(StrategyFormatURI, "Strategy Format Contract",
		mcp.WithResourceDescription("Markdown layout a strategy document must follow to be parsed into goals."),
		mcp.WithMIMEType("text/markdown"),
	)
}

func (s *Server) getStrategyContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strategy.FormatContract), nil
}

func (s *Server) readStrategyFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      StrategyFormatURI,
			MIMEType: "text/markdown",
			Text:     strategy.FormatContract,
		},
	}, nil
}
