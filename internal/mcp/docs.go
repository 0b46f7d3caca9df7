package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `studyvault keeps research projects, their studies, reusable templates and a task list.

Core concepts:
- Project: named container with an ordered list of studies (test, interview or survey).
- Template: blueprint with inert study definitions and free-form settings. Three defaults are always seeded.
- Task: unit of work held by a remote task service; this server keeps a local copy plus a filtered view.

Rules of engagement:
1) Orient with list_projects / list_templates / list_tasks.
2) Unknown ids never fail: lookups return null and mutations are no-ops.
3) Every project or template mutation is persisted immediately as a versioned snapshot.
4) Tasks must be loaded with fetch_tasks before list_tasks shows anything. A REMOTE_ERROR leaves the local copy unchanged.
5) get_recent_activity shows what changed, newest first.

Docs:
- studyvault://docs/index
- studyvault://docs/snapshots
- studyvault://docs/tasks
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "studyvault://docs/index",
		Name:        "docs_index",
		Title:       "studyvault docs index",
		Description: "Entry point: available tools grouped by store, and what each store guarantees.",
		Content: `# studyvault: Agent Docs Index

## Stores

- **Projects**: ` + "`add_project`" + `, ` + "`update_project`" + `, ` + "`delete_project`" + `, ` + "`get_project`" + `, ` + "`list_projects`" + `, ` + "`add_study`" + `, ` + "`update_study`" + `, ` + "`delete_study`" + `, ` + "`get_study`" + `.
- **Templates**: the same shape with ` + "`template`" + ` and ` + "`template_study`" + ` names.
- **Tasks**: ` + "`fetch_tasks`" + `, ` + "`list_tasks`" + `, ` + "`create_task`" + `, ` + "`update_task`" + `, ` + "`update_task_status`" + `, ` + "`assign_task`" + `, ` + "`delete_task`" + `.
- **Activity**: ` + "`get_recent_activity`" + `.

## Guarantees

- Studies keep insertion order. Deleting a project or template deletes its studies.
- Changing a study refreshes the owner's ` + "`updatedAt`" + `. Timestamps never move backwards.
- Misses are silent: null for lookups, ` + "`{\"deleted\": false}`" + ` for deletes.

## Docs (read on demand)

- ` + "`studyvault://docs/snapshots`" + ` for the persisted format and schema versions.
- ` + "`studyvault://docs/tasks`" + ` for task filtering and remote errors.
`,
	},
	{
		URI:         "studyvault://docs/snapshots",
		Name:        "docs_snapshots",
		Title:       "Snapshot format",
		Description: "How project and template collections are persisted and upgraded between schema versions.",
		Content: `# Snapshot format

Each store writes one JSON document under a fixed key after every effective mutation:

| Key | Entity field |
|---|---|
| ` + "`project-storage`" + ` | ` + "`projects`" + ` |
| ` + "`template-storage`" + ` | ` + "`templates`" + ` |

` + "```json" + `
{"projects": [ ... ], "version": 1}
` + "```" + `

## Versions

- A document without ` + "`version`" + ` is version 0. Its entity field may be an object keyed by id; it is upgraded to an array ordered by key.
- Upgrades run one step at a time until the current version.
- Unreadable documents, or documents from a newer version, are replaced by an empty collection. Templates fall back to the seeded defaults instead.

## Media

The snapshot medium is configured with ` + "`medium.driver`" + `: ` + "`memory`" + `, ` + "`file`" + `, ` + "`sqlite`" + `, ` + "`postgres`" + `, ` + "`redis`" + ` or ` + "`s3`" + `. When the medium cannot be opened the stores keep working in memory only.
`,
	},
	{
		URI:         "studyvault://docs/tasks",
		Name:        "docs_tasks",
		Title:       "Tasks",
		Description: "Local task collection, filters and remote error handling.",
		Content: `# Tasks

The task service is the source of truth. The local collection is replaced by ` + "`fetch_tasks`" + ` and patched by each mutation response.

## Filter

` + "`list_tasks`" + ` accepts an optional ` + "`filter`" + ` with ` + "`status`" + `, ` + "`priority`" + `, ` + "`assignee`" + ` and ` + "`search`" + `. Empty fields are ignored and the rest are combined with AND. ` + "`search`" + ` matches title or description, case-insensitively.

## Errors

A failed remote call returns ` + "`REMOTE_ERROR`" + ` with the service message. The local collection is left unchanged and the message stays visible in ` + "`list_tasks`" + ` until the next successful call.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
