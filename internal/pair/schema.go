package pair

import "github.com/dlemos/caderno/internal/llm"

// ChallengeSchema defines the JSON schema for challenge generation.
var ChallengeSchema = &llm.Schema{
	Name:        "pair-challenge",
	Description: "A coding challenge derived from a study note",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short name for the challenge",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "The problem statement, including requirements and constraints",
			},
			"starter_code": map[string]any{
				"type":        "string",
				"description": "Optional skeleton code to start from; empty when none fits",
			},
		},
		"required":             []any{"title", "description", "starter_code"},
		"additionalProperties": false,
	},
}

// TurnSchema defines the JSON schema for one navigator turn. The suggested
// code rides alongside the reply instead of being embedded in it, so the
// caller can render it in its own panel.
var TurnSchema = &llm.Schema{
	Name:        "pair-turn",
	Description: "One navigator turn in a pair-programming session",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "What the navigator says to the driver",
			},
			"suggested_code": map[string]any{
				"type":        "string",
				"description": "Code the navigator proposes, or empty when the turn carries none",
			},
		},
		"required":             []any{"reply", "suggested_code"},
		"additionalProperties": false,
	},
}
