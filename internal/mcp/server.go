// Package mcp exposes the kouji list and date editing as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
	"github.com/penguin-works/kouji-backend/internal/kouji/service"
	"github.com/penguin-works/kouji-backend/internal/logging"
	"github.com/penguin-works/kouji-backend/internal/timeparse"
)

type KoujiServer struct {
	McpServer *server.MCPServer

	svc *service.Service
	now func() time.Time
}

func NewKoujiServer(svc *service.Service, version string) *KoujiServer {
	ks := &KoujiServer{
		McpServer: server.NewMCPServer("kouji", version, server.WithToolCapabilities(true)),
		svc:       svc,
		now:       time.Now,
	}
	ks.addTools()
	return ks
}

func (ks *KoujiServer) addTools() {
	ks.McpServer.AddTool(mcp.NewTool(
		"list_kouji",
		mcp.WithDescription("List construction projects (kouji folders) with their dates and status"),
		mcp.WithString("path", mcp.Description("Directory to list, relative to the root (defaults to the kouji directory)")),
		mcp.WithBoolean("include_plain", mcp.Description("Also return folders that are not kouji projects")),
	), mcp.NewTypedToolHandler(ks.ListKouji))

	ks.McpServer.AddTool(mcp.NewTool(
		"parse_kouji_name",
		mcp.WithDescription("Parse a folder name of the form 'YYYY-MMDD company location'"),
		mcp.WithString("name", mcp.Description("Folder name"), mcp.Required()),
	), mcp.NewTypedToolHandler(ks.ParseKoujiName))

	ks.McpServer.AddTool(mcp.NewTool(
		"update_kouji_dates",
		mcp.WithDescription("Replace the start and end date of a project"),
		mcp.WithString("project_id", mcp.Description("Project id, e.g. 2025-0618"), mcp.Required()),
		mcp.WithString("start_date", mcp.Description("New start date, e.g. 2025-06-18"), mcp.Required()),
		mcp.WithString("end_date", mcp.Description("New end date, e.g. 2025-09-18"), mcp.Required()),
		mcp.WithString("path", mcp.Description("Directory holding the project (defaults to the kouji directory)")),
	), mcp.NewTypedToolHandler(ks.UpdateKoujiDates))
}

type ListKoujiRequest struct {
	Path         string `json:"path,omitempty"`
	IncludePlain bool   `json:"include_plain,omitempty"`
}

func (ks *KoujiServer) ListKouji(ctx context.Context, req mcp.CallToolRequest, params ListKoujiRequest) (*mcp.CallToolResult, error) {
	res, err := ks.svc.List(ctx, params.Path, service.ListOptions{IncludePlain: params.IncludePlain})
	if err != nil {
		logging.New(ctx).Error("mcp.list_kouji", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"path":       res.Path,
		"count":      len(res.Projects),
		"entries":    res.Projects,
		"folders":    res.Plain,
		"total_size": res.TotalSize,
	})
}

type ParseKoujiNameRequest struct {
	Name string `json:"name"`
}

func (ks *KoujiServer) ParseKoujiName(ctx context.Context, req mcp.CallToolRequest, params ParseKoujiNameRequest) (*mcp.CallToolResult, error) {
	entry := domain.RawEntry{Name: params.Name, IsDirectory: true}
	p, ok := domain.Parse(entry, ks.now().In(ks.svc.Location()))
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%q is not a kouji folder name", params.Name)), nil
	}
	return jsonResult(p)
}

type UpdateKoujiDatesRequest struct {
	ProjectID string `json:"project_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Path      string `json:"path,omitempty"`
}

func (ks *KoujiServer) UpdateKoujiDates(ctx context.Context, req mcp.CallToolRequest, params UpdateKoujiDatesRequest) (*mcp.CallToolResult, error) {
	loc := ks.svc.Location()
	start, err := timeparse.Parse(params.StartDate, loc)
	if err != nil {
		return mcp.NewToolResultError("start_date: " + err.Error()), nil
	}
	end, err := timeparse.Parse(params.EndDate, loc)
	if err != nil {
		return mcp.NewToolResultError("end_date: " + err.Error()), nil
	}

	p, err := ks.svc.UpdateDates(ctx, params.Path, params.ProjectID,
		domain.DateOf(start.In(loc)), domain.DateOf(end.In(loc)))
	if err != nil {
		logging.New(ctx).Warnf("mcp.update_kouji_dates", "project_id=%s error=%v", params.ProjectID, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(p)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
