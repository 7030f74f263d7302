package mcp

import (
	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/melkeydev/datadesk/dashboard"
	"github.com/melkeydev/datadesk/handlers"
)

func RegisterTools(s *server.MCPServer, svc *dashboard.Service) {
	countsTool := goMCP.NewTool("table_counts",
		goMCP.WithDescription("Show every table with its number of rows"),
	)

	sampleTool := goMCP.NewTool("sample_table",
		goMCP.WithDescription("Get sample data from a specific table"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to sample"),
		),
		goMCP.WithNumber("limit",
			goMCP.Description("Number of rows to return (default: 5)"),
		),
	)

	describeTool := goMCP.NewTool("describe_table",
		goMCP.WithDescription("Show columns, keys, indexes and row count of a table"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to describe"),
		),
	)

	uploadTool := goMCP.NewTool("upload_file",
		goMCP.WithDescription("Create a table from a .csv or .xlsx file and load its rows"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to create"),
		),
		goMCP.WithString("path",
			goMCP.Required(),
			goMCP.Description("Path of the spreadsheet file; the first row names the columns"),
		),
	)

	dropTool := goMCP.NewTool("drop_table",
		goMCP.WithDescription("Drop a table by name"),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Name of the table to drop"),
		),
	)

	insertTool := goMCP.NewTool("insert_record",
		goMCP.WithDescription("Insert a named numeric record"),
		goMCP.WithString("name",
			goMCP.Required(),
			goMCP.Description("Record name"),
		),
		goMCP.WithNumber("value",
			goMCP.Required(),
			goMCP.Description("Record value"),
		),
	)

	listTool := goMCP.NewTool("list_records",
		goMCP.WithDescription("List every record"),
	)

	statsTool := goMCP.NewTool("record_stats",
		goMCP.WithDescription("Max, min and average of the record values"),
	)

	s.AddTool(countsTool, handlers.TableCountsHandler(svc))
	s.AddTool(sampleTool, handlers.SampleHandler(svc))
	s.AddTool(describeTool, handlers.DescribeHandler(svc))
	s.AddTool(uploadTool, handlers.UploadHandler(svc))
	s.AddTool(dropTool, handlers.DropHandler(svc))
	s.AddTool(insertTool, handlers.InsertHandler(svc))
	s.AddTool(listTool, handlers.ListHandler(svc))
	s.AddTool(statsTool, handlers.StatsHandler(svc))
}
