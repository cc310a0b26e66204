// ABOUTME: MCP tool definitions and registration for the activity server
// ABOUTME: Declares JSON schemas for the activity and attachment tools
package mcp

import (
	"github.com/harper/activities/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var recurrenceSchema = map[string]interface{}{
	"type":        []string{"object", "null"},
	"description": "Repeat rule; null clears it",
	"properties": map[string]interface{}{
		"frequency": map[string]interface{}{
			"type": "string",
			"enum": []string{"none", "daily", "weekly", "monthly", "yearly", "custom"},
		},
		"interval": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
		},
		"endDate": map[string]interface{}{
			"type":        "string",
			"description": "RFC 3339 timestamp",
		},
	},
	"required": []string{"frequency"},
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, store *sqlite.Storage, opts Options) *Handlers {
	handlers := NewHandlers(store, opts)

	// 1. add_activity - Record a new note, task, expense or reminder
	server.AddTool(mcp.Tool{
		Name:        "add_activity",
		Description: "Record a new activity (note, task, expense or reminder). Expenses with an amount also store the amount and currency.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"note", "task", "expense", "reminder"},
					"description": "Activity type",
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Short, non-empty title",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Optional longer text",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Optional free-form category",
				},
				"amount": map[string]interface{}{
					"type":        "number",
					"description": "Expense amount (expenses only)",
				},
				"currency": map[string]interface{}{
					"type":        "string",
					"description": "ISO currency code (expenses only)",
				},
				"recurrence": recurrenceSchema,
			},
			Required: []string{"type", "title"},
		},
	}, handlers.AddActivity)

	// 2. list_activities - Most recent activities first
	server.AddTool(mcp.Tool{
		Name:        "list_activities",
		Description: "List the most recent non-deleted activities, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of activities to return",
				},
			},
		},
	}, handlers.ListActivities)

	// 3. update_activity - Partial update; only provided fields change
	server.AddTool(mcp.Tool{
		Name:        "update_activity",
		Description: "Update an activity. Only provided fields change; pass null to clear description, category or recurrence.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Activity ID",
				},
				"title": map[string]interface{}{
					"type": "string",
				},
				"description": map[string]interface{}{
					"type": []string{"string", "null"},
				},
				"category": map[string]interface{}{
					"type": []string{"string", "null"},
				},
				"amount": map[string]interface{}{
					"type":        "number",
					"description": "Expense amount (expenses only)",
				},
				"currency": map[string]interface{}{
					"type":        "string",
					"description": "ISO currency code (expenses only)",
				},
				"recurrence": recurrenceSchema,
			},
			Required: []string{"id"},
		},
	}, handlers.UpdateActivity)

	// 4. delete_activity - Soft delete
	server.AddTool(mcp.Tool{
		Name:        "delete_activity",
		Description: "Delete an activity. It disappears from listings but is kept for history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Activity ID",
				},
			},
			Required: []string{"id"},
		},
	}, handlers.DeleteActivity)

	// 5. list_attachments - Files attached to one activity
	server.AddTool(mcp.Tool{
		Name:        "list_attachments",
		Description: "List the files attached to an activity, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"activity_id": map[string]interface{}{
					"type":        "string",
					"description": "Activity ID",
				},
			},
			Required: []string{"activity_id"},
		},
	}, handlers.ListAttachments)

	return handlers
}
