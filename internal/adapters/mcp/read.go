// Package mcp exposes read-only inspection tools over a destination tree
// for MCP clients. The server never mutates anything; runs stay with the CLI
// and the TUI.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"isobinder/internal/adapters/filesystem"
	"isobinder/internal/domain"
	"isobinder/internal/ports"
	"isobinder/internal/runlog"
)

// Inspector bundles the read-side collaborators the tools work with
type Inspector struct {
	Dest       string
	Tracker    ports.EntityTable
	Candidates ports.CandidateStore
	Cache      ports.MergeCache
}

// RegisterReadTools adds all inspection tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, in Inspector) {
	s.AddTool(statusTool(), statusHandler(in))
	s.AddTool(folderTool(), folderHandler(in))
	s.AddTool(cacheTool(), cacheHandler(in))
	s.AddTool(reportTool(), reportHandler(in))
}

// --- status ---

func statusTool() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("Summarize the tracker: every record with its folder name and OK/MISSING status. Optionally filter to one status."),
		mcp.WithString("filter",
			mcp.Description("Only return records with this status (OK or MISSING). Omit for all records."),
		),
	)
}

func statusHandler(in Inspector) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := strings.ToUpper(req.GetString("filter", ""))

		records, err := in.Tracker.Load()
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		ok, missing := 0, 0
		for _, r := range records {
			switch r.Status {
			case domain.StatusOK:
				ok++
			case domain.StatusMissing:
				missing++
			}
			if filter != "" && string(r.Status) != filter {
				continue
			}
			fmt.Fprintf(&sb, "%s  %s  %s\n", r.IsoNo, r.FolderName, orDash(string(r.Status)))
		}
		fmt.Fprintf(&sb, "\n%d records, %d OK, %d MISSING\n", len(records), ok, missing)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- folder ---

func folderTool() mcp.Tool {
	return mcp.NewTool("folder",
		mcp.WithDescription("Inspect one destination folder: its files by role and its candidate table."),
		mcp.WithString("name",
			mcp.Description("Folder name under the destination root (e.g. L1_S1)"),
			mcp.Required(),
		),
	)
}

func folderHandler(in Inspector) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("name", "")
		if name == "" {
			return toolError(fmt.Errorf("name is required"))
		}
		path := filepath.Join(in.Dest, filepath.Base(name))

		files, err := filesystem.ListFiles(path)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%d files)\n", name, len(files))
		for _, f := range files {
			fmt.Fprintf(&sb, "  %-8s %s\n", domain.Classify(f), f)
		}

		rows, found, err := in.Candidates.Load(path)
		if err != nil {
			fmt.Fprintf(&sb, "\ncandidate table unreadable: %v\n", err)
		}
		if found {
			sb.WriteString("\ncandidates:\n")
			for _, r := range rows {
				fmt.Fprintf(&sb, "  %s  pages %s  %s\n", r.IsoKey, domain.FormatPages(r.Pages), orDash(string(r.Status)))
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- cache ---

func cacheTool() mcp.Tool {
	return mcp.NewTool("cache",
		mcp.WithDescription("Show the merge-cache state of every destination folder: whether a merged output exists and when it was last rebuilt."),
	)
}

func cacheHandler(in Inspector) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folders, err := filesystem.ListDirs(in.Dest)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		for _, folder := range folders {
			path := filepath.Join(in.Dest, folder)
			entry, found, err := in.Cache.Get(path)
			switch {
			case err != nil:
				fmt.Fprintf(&sb, "%s  cache unreadable: %v\n", folder, err)
			case !found:
				fmt.Fprintf(&sb, "%s  never merged\n", folder)
			default:
				fmt.Fprintf(&sb, "%s  merged %s  %s\n",
					folder, entry.Timestamp.Format(time.RFC3339), shortFingerprint(entry.Fingerprint))
			}
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("no folders under the destination root"), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- report ---

func reportTool() mcp.Tool {
	return mcp.NewTool("report",
		mcp.WithDescription("Return the error report of the last run (error_report.log in the destination root)."),
	)
}

func reportHandler(in Inspector) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := os.ReadFile(filepath.Join(in.Dest, runlog.ErrorReportName))
		if err != nil {
			if os.IsNotExist(err) {
				return mcp.NewToolResultText("no report: the pipeline has not run here yet"), nil
			}
			return toolError(err)
		}
		if len(b) == 0 {
			return mcp.NewToolResultText("last run finished without errors"), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortFingerprint(fp domain.Fingerprint) string {
	if len(fp) > 12 {
		return string(fp[:12])
	}
	return string(fp)
}
