package interview

import "github.com/dlemos/caderno/internal/llm"

// QuestionsSchema defines the JSON schema for interview question generation.
var QuestionsSchema = &llm.Schema{
	Name:        "interview-questions",
	Description: "Interview questions derived from a study note",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The full question as the interviewer would ask it",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Topic area within the note the question probes",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"junior", "mid", "senior"},
							"description": "Seniority level the question targets",
						},
					},
					"required":             []any{"question", "category", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// EvaluationSchema defines the JSON schema for per-answer evaluations.
var EvaluationSchema = &llm.Schema{
	Name:        "interview-evaluation",
	Description: "Structured evaluation of one interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "string",
				"enum":        []any{"strong_hire", "hire", "mixed", "no_hire"},
				"description": "Overall verdict for this answer",
			},
			"dimensions": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"correctness": map[string]any{"type": "integer", "minimum": 0, "maximum": 4},
					"depth":       map[string]any{"type": "integer", "minimum": 0, "maximum": 4},
					"clarity":     map[string]any{"type": "integer", "minimum": 0, "maximum": 4},
				},
				"required":             []any{"correctness", "depth", "clarity"},
				"additionalProperties": false,
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Two or three sentences of direct feedback on the answer",
			},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"improvements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"score", "dimensions", "feedback", "strengths", "improvements"},
		"additionalProperties": false,
	},
}

// FinalVerdictSchema defines the JSON schema for the end-of-interview
// summary.
var FinalVerdictSchema = &llm.Schema{
	Name:        "interview-final-verdict",
	Description: "Overall verdict across all answered interview questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict": map[string]any{
				"type": "string",
				"enum": []any{"strong_hire", "hire", "mixed", "no_hire"},
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "A short paragraph summarizing the candidate's performance",
			},
		},
		"required":             []any{"verdict", "summary"},
		"additionalProperties": false,
	},
}
