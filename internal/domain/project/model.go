package project

import "time"

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known project status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// StudyType is the research method of a study.
type StudyType string

const (
	StudyTypeTest      StudyType = "test"
	StudyTypeInterview StudyType = "interview"
	StudyTypeSurvey    StudyType = "survey"
)

// Valid reports whether t is a known study type.
func (t StudyType) Valid() bool {
	switch t {
	case StudyTypeTest, StudyTypeInterview, StudyTypeSurvey:
		return true
	}
	return false
}

// StudyStatus is the lifecycle state of a study.
type StudyStatus string

const (
	StudyStatusDraft     StudyStatus = "draft"
	StudyStatusActive    StudyStatus = "active"
	StudyStatusCompleted StudyStatus = "completed"
	StudyStatusArchived  StudyStatus = "archived"
)

// Valid reports whether s is a known study status.
func (s StudyStatus) Valid() bool {
	switch s {
	case StudyStatusDraft, StudyStatusActive, StudyStatusCompleted, StudyStatusArchived:
		return true
	}
	return false
}

// Project owns an ordered collection of studies.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Status      Status    `json:"status"`
	Goal        string    `json:"goal,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Studies     []Study   `json:"studies"`
}

// Study is a single research activity inside a project.
type Study struct {
	ID           string      `json:"id"`
	Type         StudyType   `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Status       StudyStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Participants int         `json:"participants"`
	Responses    int         `json:"responses"`
}

// NewStudy carries the caller-supplied fields of a study. The store assigns id
// and timestamps.
type NewStudy struct {
	Type         StudyType   `json:"type"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Status       StudyStatus `json:"status,omitempty"`
	Participants int         `json:"participants,omitempty"`
	Responses    int         `json:"responses,omitempty"`
}

// ProjectPatch lists the project fields an update may change. Nil fields are left alone.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Goal        *string `json:"goal,omitempty"`
}

// Apply merges the patch into p and returns the result.
func (patch ProjectPatch) Apply(p Project) Project {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Goal != nil {
		p.Goal = *patch.Goal
	}
	return p
}

// StudyPatch lists the study fields an update may change.
type StudyPatch struct {
	Type         *StudyType   `json:"type,omitempty"`
	Title        *string      `json:"title,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Status       *StudyStatus `json:"status,omitempty"`
	Participants *int         `json:"participants,omitempty"`
	Responses    *int         `json:"responses,omitempty"`
}

// Apply merges the patch into s and returns the result.
func (patch StudyPatch) Apply(s Study) Study {
	if patch.Type != nil {
		s.Type = *patch.Type
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.Participants != nil {
		s.Participants = *patch.Participants
	}
	if patch.Responses != nil {
		s.Responses = *patch.Responses
	}
	return s
}

func (p Project) clone() Project {
	studies := make([]Study, len(p.Studies))
	copy(studies, p.Studies)
	p.Studies = studies
	return p
}
