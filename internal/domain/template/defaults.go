package template

import (
	"time"

	"github.com/ganot/studyvault/internal/domain/project"
)

// Ids of the built-in templates.
const (
	DefaultUsabilityTestID  = "default-usability-test"
	DefaultFeedbackSurveyID = "default-feedback-survey"
	DefaultUserInterviewID  = "default-user-interview"
)

// Defaults returns the built-in templates stamped with now. Numeric settings
// are float64 so seeded values compare equal to ones read back from JSON.
func Defaults(now time.Time) []Template {
	return []Template{
		{
			ID:          DefaultUsabilityTestID,
			Name:        "Usability Test",
			Description: "Watch participants complete key tasks and note where they struggle.",
			Category:    "usability",
			IsDefault:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
			Studies: []TemplateStudy{
				{
					ID:          DefaultUsabilityTestID + "-tasks",
					Type:        project.StudyTypeTest,
					Title:       "Task-based usability session",
					Description: "Moderated session with think-aloud protocol.",
					Settings: map[string]any{
						"moderated":       true,
						"recordScreen":    true,
						"durationMinutes": float64(45),
						"tasks": []any{
							"Find a product and add it to the cart",
							"Complete checkout as a guest",
						},
					},
					CreatedAt: now,
					UpdatedAt: now,
				},
				{
					ID:          DefaultUsabilityTestID + "-sus",
					Type:        project.StudyTypeSurvey,
					Title:       "System Usability Scale",
					Description: "Ten-item questionnaire completed after the session.",
					Settings: map[string]any{
						"scale":     "likert-5",
						"questions": float64(10),
					},
					CreatedAt: now,
					UpdatedAt: now,
				},
			},
		},
		{
			ID:          DefaultFeedbackSurveyID,
			Name:        "Feedback Survey",
			Description: "Collect structured feedback from customers at scale.",
			Category:    "survey",
			IsDefault:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
			Studies: []TemplateStudy{
				{
					ID:          DefaultFeedbackSurveyID + "-nps",
					Type:        project.StudyTypeSurvey,
					Title:       "Product feedback survey",
					Description: "Net promoter score followed by open questions.",
					Settings: map[string]any{
						"anonymous": true,
						"questions": []any{
							map[string]any{"kind": "nps", "prompt": "How likely are you to recommend us?"},
							map[string]any{"kind": "text", "prompt": "What should we improve first?"},
						},
					},
					CreatedAt: now,
					UpdatedAt: now,
				},
			},
		},
		{
			ID:          DefaultUserInterviewID,
			Name:        "User Interview",
			Description: "Semi-structured interviews to understand needs and motivations.",
			Category:    "interview",
			IsDefault:   true,
			CreatedAt:   now,
			UpdatedAt:   now,
			Studies: []TemplateStudy{
				{
					ID:          DefaultUserInterviewID + "-discovery",
					Type:        project.StudyTypeInterview,
					Title:       "Discovery interview",
					Description: "One-on-one conversation following a discussion guide.",
					Settings: map[string]any{
						"durationMinutes": float64(60),
						"recordAudio":     true,
						"guide": []any{
							"Walk me through the last time you did this.",
							"What was the hardest part?",
							"What did you try before?",
						},
					},
					CreatedAt: now,
					UpdatedAt: now,
				},
			},
		},
	}
}
