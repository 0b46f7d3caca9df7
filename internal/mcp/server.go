package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/studyvault/internal/domain/activity"
	"github.com/ganot/studyvault/internal/domain/project"
	"github.com/ganot/studyvault/internal/domain/task"
	"github.com/ganot/studyvault/internal/domain/template"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectStore defines project and study operations needed by MCP.
type ProjectStore interface {
	AddProject(p project.Project) project.Project
	UpdateProject(id string, patch project.ProjectPatch)
	DeleteProject(id string)
	AddStudy(projectID string, in project.NewStudy) (project.Study, bool)
	UpdateStudy(projectID, studyID string, patch project.StudyPatch)
	DeleteStudy(projectID, studyID string)
	GetProjectByID(id string) (project.Project, bool)
	GetStudyByID(projectID, studyID string) (project.Study, bool)
	Projects() []project.Project
}

// TemplateStore defines template operations needed by MCP.
type TemplateStore interface {
	AddTemplate(t template.Template) template.Template
	UpdateTemplate(id string, patch template.TemplatePatch)
	DeleteTemplate(id string)
	AddTemplateStudy(templateID string, in template.NewTemplateStudy) (template.TemplateStudy, bool)
	UpdateTemplateStudy(templateID, studyID string, patch template.TemplateStudyPatch)
	DeleteTemplateStudy(templateID, studyID string)
	GetTemplateByID(id string) (template.Template, bool)
	GetTemplateStudyByID(templateID, studyID string) (template.TemplateStudy, bool)
	Templates() []template.Template
}

// TaskStore defines task operations needed by MCP.
type TaskStore interface {
	FetchUserTasks(ctx context.Context, userID string) error
	FetchProjectTasks(ctx context.Context, projectID string) error
	FetchStudyTasks(ctx context.Context, studyID string) error
	CreateTask(ctx context.Context, in task.CreateInput) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status task.Status) (*task.Task, error)
	AssignTask(ctx context.Context, id, assigneeID string) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
	Tasks() []task.Task
	SetFilter(f task.Filter)
	Filter() task.Filter
	Filtered() []task.Task
	Loading() bool
	Error() (string, bool)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Record(ctx context.Context, kind activity.ActivityType, subjectID string, parentID *string, summary string)
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all stores needed by MCP.
type Services struct {
	Projects  ProjectStore
	Templates TemplateStore
	Tasks     TaskStore
	Activity  ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "studyvault",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	logger := cfg.Logger
	if logger != nil && cfg.TransportMode != "" {
		logger = logger.With("transport", cfg.TransportMode)
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services), logger)

	return server
}
