package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/melkeydev/datadesk/dashboard"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// TableCountsHandler creates a handler for the table_counts tool
func TableCountsHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		counts, err := svc.TableCounts(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Table counts failed: %v", err)), nil
		}

		return jsonResult(counts)
	}
}

// SampleHandler creates a handler for the sample_table tool
func SampleHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}

		limit := request.GetInt("limit", dashboard.DefaultPreviewLimit)

		results, err := svc.Preview(ctx, table, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Sample failed: %v", err)), nil
		}

		return jsonResult(results)
	}
}

// DescribeHandler creates a handler for the describe_table tool
func DescribeHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}

		desc, err := svc.Describe(ctx, table)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Describe failed: %v", err)), nil
		}

		return jsonResult(desc)
	}
}

// UploadHandler creates a handler for the upload_file tool
func UploadHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing path parameter: %v", err)), nil
		}

		res, err := svc.UploadFile(ctx, table, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Upload failed: %v", err)), nil
		}

		return jsonResult(res)
	}
}

// DropHandler creates a handler for the drop_table tool
func DropHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}

		if err := svc.Drop(ctx, table); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Drop failed: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Table %s dropped", table)), nil
	}
}

// InsertHandler creates a handler for the insert_record tool
func InsertHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing name parameter: %v", err)), nil
		}
		value, err := request.RequireFloat("value")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing value parameter: %v", err)), nil
		}

		if err := svc.Insert(ctx, name, value); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Insert failed: %v", err)), nil
		}

		return mcp.NewToolResultText("Record inserted"), nil
	}
}

// ListHandler creates a handler for the list_records tool
func ListHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := svc.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("List failed: %v", err)), nil
		}

		return jsonResult(records)
	}
}

// StatsHandler creates a handler for the record_stats tool
func StatsHandler(svc *dashboard.Service) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Stats failed: %v", err)), nil
		}

		return jsonResult(stats)
	}
}
