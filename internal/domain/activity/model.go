package activity

import "time"

// ActivityType names a mutation recorded in the journal.
type ActivityType string

const (
	TypeProjectCreated       ActivityType = "project_created"
	TypeProjectUpdated       ActivityType = "project_updated"
	TypeProjectDeleted       ActivityType = "project_deleted"
	TypeStudyCreated         ActivityType = "study_created"
	TypeStudyUpdated         ActivityType = "study_updated"
	TypeStudyDeleted         ActivityType = "study_deleted"
	TypeTemplateCreated      ActivityType = "template_created"
	TypeTemplateUpdated      ActivityType = "template_updated"
	TypeTemplateDeleted      ActivityType = "template_deleted"
	TypeTemplateStudyCreated ActivityType = "template_study_created"
	TypeTemplateStudyUpdated ActivityType = "template_study_updated"
	TypeTemplateStudyDeleted ActivityType = "template_study_deleted"
	TypeTaskCreated          ActivityType = "task_created"
	TypeTaskUpdated          ActivityType = "task_updated"
	TypeTaskDeleted          ActivityType = "task_deleted"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	SubjectID    string       `json:"subject_id"`
	ParentID     *string      `json:"parent_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
