// ABOUTME: MCP tool handler implementations for the activity server
// ABOUTME: Translates tool arguments into store calls and JSON responses
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/activities/internal/models"
	"github.com/harper/activities/internal/storage/sqlite"
	"github.com/mark3labs/mcp-go/mcp"
)

// Options configures the handlers
type Options struct {
	// UserID owns every activity created or listed through the tools
	UserID          string
	DefaultCurrency string
	ListLimit       int
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	storage *sqlite.Storage
	opts    Options
}

// NewHandlers creates handlers over store
func NewHandlers(store *sqlite.Storage, opts Options) *Handlers {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = models.DefaultCurrency
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = sqlite.DefaultListLimit
	}
	return &Handlers{storage: store, opts: opts}
}

// AddActivity handles the add_activity tool
func (h *Handlers) AddActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeArg, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type argument is required and must be a string"), nil
	}
	activityType, err := models.ParseActivityType(typeArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}

	in := models.NewActivity{
		Type:        activityType,
		Title:       title,
		Description: request.GetString("description", ""),
		Category:    request.GetString("category", ""),
		Currency:    request.GetString("currency", ""),
	}

	args := request.GetArguments()
	if raw, ok := args["amount"]; ok && raw != nil {
		amount, ok := raw.(float64)
		if !ok {
			return mcp.NewToolResultError("amount must be a number"), nil
		}
		in.Amount = &amount
	}
	if in.HasExpense() && in.Currency == "" {
		in.Currency = h.opts.DefaultCurrency
	}

	if raw, ok := args["recurrence"]; ok && raw != nil {
		rule, err := decodeRecurrence(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.Recurrence = &rule
	}

	id, err := h.storage.Activities.Create(ctx, h.opts.UserID, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add activity: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"id":   id,
		"type": string(activityType),
	})
}

// ListActivities handles the list_activities tool
func (h *Handlers) ListActivities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", h.opts.ListLimit)

	activities := h.storage.Activities.ListRecent(ctx, h.opts.UserID, limit)

	return jsonResult(map[string]interface{}{
		"activities": activities,
		"count":      len(activities),
	})
}

// UpdateActivity handles the update_activity tool
func (h *Handlers) UpdateActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}

	existing, err := h.storage.Activities.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load activity: %v", err)), nil
	}
	if existing == nil || existing.IsDeleted {
		return mcp.NewToolResultError(fmt.Sprintf("activity not found: %s", id)), nil
	}

	patch, err := patchFromArgs(existing.Type, request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := h.storage.Activities.Update(ctx, id, patch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update activity: %v", err)), nil
	}

	updated, err := h.storage.Activities.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to reload activity: %v", err)), nil
	}
	return jsonResult(updated)
}

// DeleteActivity handles the delete_activity tool
func (h *Handlers) DeleteActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}

	if err := h.storage.Activities.SoftDelete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete activity: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"id":      id,
		"deleted": true,
	})
}

// ListAttachments handles the list_attachments tool
func (h *Handlers) ListAttachments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activityID, err := request.RequireString("activity_id")
	if err != nil {
		return mcp.NewToolResultError("activity_id argument is required and must be a string"), nil
	}

	attachments := h.storage.Attachments.ListForActivity(ctx, activityID)

	return jsonResult(map[string]interface{}{
		"attachments": attachments,
		"count":       len(attachments),
	})
}

// patchFromArgs builds a patch from the keys present in args. A JSON null
// clears description, category or recurrence.
func patchFromArgs(activityType models.ActivityType, args map[string]interface{}) (models.ActivityPatch, error) {
	patch := models.ActivityPatch{Type: activityType}

	if raw, ok := args["title"]; ok {
		title, ok := raw.(string)
		if !ok {
			return patch, fmt.Errorf("title must be a string")
		}
		patch.Title = models.Set(title)
	}

	var err error
	if patch.Description, err = nullableString(args, "description"); err != nil {
		return patch, err
	}
	if patch.Category, err = nullableString(args, "category"); err != nil {
		return patch, err
	}

	if raw, ok := args["recurrence"]; ok {
		if raw == nil {
			patch.Recurrence = models.Null[models.RecurrenceRule]()
		} else {
			rule, err := decodeRecurrence(raw)
			if err != nil {
				return patch, err
			}
			patch.Recurrence = models.Set(rule)
		}
	}

	if raw, ok := args["amount"]; ok && raw != nil {
		amount, ok := raw.(float64)
		if !ok {
			return patch, fmt.Errorf("amount must be a number")
		}
		patch.Amount = models.Set(amount)
	}
	if raw, ok := args["currency"]; ok && raw != nil {
		currency, ok := raw.(string)
		if !ok {
			return patch, fmt.Errorf("currency must be a string")
		}
		patch.Currency = models.Set(currency)
	}

	return patch, nil
}

func nullableString(args map[string]interface{}, key string) (models.Field[string], error) {
	raw, ok := args[key]
	if !ok {
		return models.Field[string]{}, nil
	}
	if raw == nil {
		return models.Null[string](), nil
	}
	s, ok := raw.(string)
	if !ok {
		return models.Field[string]{}, fmt.Errorf("%s must be a string or null", key)
	}
	return models.Set(s), nil
}

// decodeRecurrence converts a decoded JSON object into a validated rule
func decodeRecurrence(raw interface{}) (models.RecurrenceRule, error) {
	var rule models.RecurrenceRule
	data, err := json.Marshal(raw)
	if err != nil {
		return rule, fmt.Errorf("invalid recurrence: %w", err)
	}
	if err := json.Unmarshal(data, &rule); err != nil {
		return rule, fmt.Errorf("invalid recurrence: %w", err)
	}
	if err := rule.Validate(); err != nil {
		return rule, err
	}
	return rule, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
