package learning

import "github.com/dlemos/caderno/internal/llm"

// ConceptsSchema defines the JSON schema for concept extraction responses.
var ConceptsSchema = &llm.Schema{
	Name:        "study-concepts",
	Description: "Concepts extracted from a study note, each with optional practice problems",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short concept name as it appears in the note",
						},
						"summary": map[string]any{
							"type":        "string",
							"description": "One-sentence summary of what the concept covers",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"basic", "intermediate", "advanced"},
							"description": "How demanding the concept is relative to the note",
						},
						"problems": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Short titles of practice problems the learner can explore for this concept. May be empty.",
						},
					},
					"required":             []any{"title", "summary", "difficulty", "problems"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"concepts"},
		"additionalProperties": false,
	},
}

// VerdictSchema defines the JSON schema for answer classification.
var VerdictSchema = &llm.Schema{
	Name:        "learning-verdict",
	Description: "Classification of the learner's latest answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []any{"advance", "increase_support", "continue"},
				"description": "advance: the learner demonstrated understanding. increase_support: the learner is struggling and needs more scaffolding. continue: keep the dialog going at the current level.",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences of feedback addressed to the learner",
			},
		},
		"required":             []any{"action", "feedback"},
		"additionalProperties": false,
	},
}
