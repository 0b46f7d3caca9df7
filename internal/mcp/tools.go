package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "add_project",
			Description: "Create a project. The id is generated when omitted",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Unique project identifier (optional, will be generated if not provided)",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "Project display name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Project description",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "Free-form category",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Initial status (defaults to active)",
						"enum":        []string{"active", "completed", "archived"},
					},
					"goal": map[string]any{
						"type":        "string",
						"description": "Research goal",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "update_project",
			Description: "Update project fields; omitted fields are left unchanged. Returns null for an unknown id",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "New name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "New description",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "New category",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "New status",
						"enum":        []string{"active", "completed", "archived"},
					},
					"goal": map[string]any{
						"type":        "string",
						"description": "New goal",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "delete_project",
			Description: "Delete a project together with its studies",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_project",
			Description: "Get a project with its studies, or null when it does not exist",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "list_projects",
			Description: "List all projects in insertion order",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "add_study",
			Description: "Append a study to a project. Returns null when the project does not exist",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Owning project ID",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Study type",
						"enum":        []string{"test", "interview", "survey"},
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Study title",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Study description",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Initial status (defaults to draft)",
						"enum":        []string{"draft", "active", "completed", "archived"},
					},
					"participants": map[string]any{
						"type":        "integer",
						"description": "Participant count",
					},
					"responses": map[string]any{
						"type":        "integer",
						"description": "Response count",
					},
				},
				"required": []string{"project_id", "type", "title"},
			},
		},
		{
			Name:        "update_study",
			Description: "Update study fields and refresh the owning project's updatedAt",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Owning project ID",
					},
					"study_id": map[string]any{
						"type":        "string",
						"description": "Study ID",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "New study type",
						"enum":        []string{"test", "interview", "survey"},
					},
					"title": map[string]any{
						"type":        "string",
						"description": "New title",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "New description",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "New status",
						"enum":        []string{"draft", "active", "completed", "archived"},
					},
					"participants": map[string]any{
						"type":        "integer",
						"description": "New participant count",
					},
					"responses": map[string]any{
						"type":        "integer",
						"description": "New response count",
					},
				},
				"required": []string{"project_id", "study_id"},
			},
		},
		{
			Name:        "delete_study",
			Description: "Remove a study from a project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Owning project ID",
					},
					"study_id": map[string]any{
						"type":        "string",
						"description": "Study ID",
					},
				},
				"required": []string{"project_id", "study_id"},
			},
		},
		{
			Name:        "get_study",
			Description: "Get a study, or null when it does not exist",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Owning project ID",
					},
					"study_id": map[string]any{
						"type":        "string",
						"description": "Study ID",
					},
				},
				"required": []string{"project_id", "study_id"},
			},
		},

		// Templates
		{
			Name:        "add_template",
			Description: "Create a template. The id is generated when omitted",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Unique template identifier (optional)",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "Template display name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Template description",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "Free-form category",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "update_template",
			Description: "Update template fields. Returns null for an unknown id",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Template ID",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "New name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "New description",
					},
					"category": map[string]any{
						"type":        "string",
						"description": "New category",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "delete_template",
			Description: "Delete a template together with its studies",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Template ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_template",
			Description: "Get a template, or null when it does not exist",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Template ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "list_templates",
			Description: "List all templates, including the seeded defaults",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "add_template_study",
			Description: "Append a study blueprint to a template",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"template_id": map[string]any{
						"type":        "string",
						"description": "Owning template ID",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Study type",
						"enum":        []string{"test", "interview", "survey"},
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Study title",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Study description",
					},
					"settings": map[string]any{
						"type":        "object",
						"description": "Free-form study settings",
					},
				},
				"required": []string{"template_id", "type", "title"},
			},
		},
		{
			Name:        "update_template_study",
			Description: "Update a template study. Settings, when given, replace the whole map",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"template_id": map[string]any{
						"type":        "string",
						"description": "Owning template ID",
					},
					"study_id": map[string]any{
						"type":        "string",
						"description": "Template study ID",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "New study type",
						"enum":        []string{"test", "interview", "survey"},
					},
					"title": map[string]any{
						"type":        "string",
						"description": "New title",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "New description",
					},
					"settings": map[string]any{
						"type":        "object",
						"description": "Replacement settings",
					},
				},
				"required": []string{"template_id", "study_id"},
			},
		},
		{
			Name:        "delete_template_study",
			Description: "Remove a study blueprint from a template",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"template_id": map[string]any{
						"type":        "string",
						"description": "Owning template ID",
					},
					"study_id": map[string]any{
						"type":        "string",
						"description": "Template study ID",
					},
				},
				"required": []string{"template_id", "study_id"},
			},
		},
		{
			Name:        "get_template_study",
			Description: "Get a template study, or null when it does not exist",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"template_id": map[string]any{
						"type":        "string",
						"description": "Owning template ID",
					},
					"study_id": map[string]any{
						"type":        "string",
						"description": "Template study ID",
					},
				},
				"required": []string{"template_id", "study_id"},
			},
		},

		// Tasks
		{
			Name:        "fetch_tasks",
			Description: "Replace the local task collection with the remote tasks of a user, project or study",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"scope": map[string]any{
						"type":        "string",
						"description": "Collection to load",
						"enum":        []string{"user", "project", "study"},
					},
					"id": map[string]any{
						"type":        "string",
						"description": "User, project or study ID",
					},
				},
				"required": []string{"scope", "id"},
			},
		},
		{
			Name:        "list_tasks",
			Description: "Show the local task collection and its filtered view, optionally replacing the filter",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"filter": map[string]any{
						"type":        "object",
						"description": "Filter with optional status, priority, assignee and search fields",
					},
				},
			},
		},
		{
			Name:        "create_task",
			Description: "Create a task remotely and append it locally",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"projectId": map[string]any{
						"type":        "string",
						"description": "Owning project ID",
					},
					"studyId": map[string]any{
						"type":        "string",
						"description": "Related study ID",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Task title",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Task description",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Initial status (defaults to todo)",
						"enum":        []string{"todo", "in_progress", "review", "done"},
					},
					"priority": map[string]any{
						"type":        "string",
						"description": "Priority (defaults to medium)",
						"enum":        []string{"low", "medium", "high", "urgent"},
					},
					"assigneeId": map[string]any{
						"type":        "string",
						"description": "Assigned user ID",
					},
					"createdBy": map[string]any{
						"type":        "string",
						"description": "Creating user ID",
					},
					"dueDate": map[string]any{
						"type":        "string",
						"description": "Due date (RFC 3339)",
					},
				},
				"required": []string{"projectId", "title", "createdBy"},
			},
		},
		{
			Name:        "update_task",
			Description: "Update task fields remotely and replace the local copy",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "New title",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "New description",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "New status",
						"enum":        []string{"todo", "in_progress", "review", "done"},
					},
					"priority": map[string]any{
						"type":        "string",
						"description": "New priority",
						"enum":        []string{"low", "medium", "high", "urgent"},
					},
					"assigneeId": map[string]any{
						"type":        "string",
						"description": "New assignee",
					},
					"studyId": map[string]any{
						"type":        "string",
						"description": "New study ID",
					},
					"dueDate": map[string]any{
						"type":        "string",
						"description": "New due date (RFC 3339)",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "update_task_status",
			Description: "Move a task to another status",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "Target status",
						"enum":        []string{"todo", "in_progress", "review", "done"},
					},
				},
				"required": []string{"id", "status"},
			},
		},
		{
			Name:        "assign_task",
			Description: "Assign a task to a user",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
					"assignee_id": map[string]any{
						"type":        "string",
						"description": "User ID",
					},
				},
				"required": []string{"id", "assignee_id"},
			},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task remotely and drop it locally",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
				},
				"required": []string{"id"},
			},
		},

		// Activity
		{
			Name:        "get_recent_activity",
			Description: "Get recent mutations, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"subject_id": map[string]any{
						"type":        "string",
						"description": "Entity ID to filter by",
					},
					"parent_id": map[string]any{
						"type":        "string",
						"description": "Owning project or template ID to filter by",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Activity type to filter by",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of activity entries",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},
	}
}

// registerTools exposes every catalog entry as an SDK tool backed by handler.
// Domain errors become tool results with IsError set so the client sees the
// APIError payload.
func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				if logger != nil {
					logger.Debug("tool call failed", "tool", name, "error", err)
				}
				return toolResult(errorPayload(err), true), nil
			}
			return toolResult(result, false), nil
		})
	}
}

func toolResult(payload any, isError bool) *sdkmcp.CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"code":"INTERNAL","message":"unencodable result"}`)
		isError = true
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: isError,
	}
}

func errorPayload(err error) *APIError {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{Code: "INTERNAL", Message: err.Error()}
}
