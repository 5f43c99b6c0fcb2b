package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"isobinder/internal/adapters/cache"
	mcpadapter "isobinder/internal/adapters/mcp"
	"isobinder/internal/adapters/xlsx"
	"isobinder/internal/config"
)

func main() {
	env := config.FromEnv()
	trackerFlag := flag.String("tracker", env.Tracker, "path to the tracker workbook")
	destFlag := flag.String("dest", env.Dest, "destination root to inspect")
	flag.Parse()

	mcpServer := server.NewMCPServer(
		"isobinder-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, mcpadapter.Inspector{
		Dest:       *destFlag,
		Tracker:    xlsx.NewTracker(*trackerFlag),
		Candidates: xlsx.NewCandidateStore(),
		Cache:      cache.NewSidecar(),
	})

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("isobinder-mcp: %v", err)
	}
}
