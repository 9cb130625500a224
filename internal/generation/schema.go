package generation

import "github.com/abhisek/pathwise/internal/llm"

// GraphSchema defines the JSON schema for curriculum graph proposals.
var GraphSchema = &llm.Schema{
	Name:        "curriculum-graph",
	Description: "A small prerequisite graph of concepts for one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nodes": map[string]any{
				"type":     "array",
				"minItems": 5,
				"maxItems": 8,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Short unique identifier, e.g. c1",
						},
						"label": map[string]any{
							"type":        "string",
							"description": "Human-readable concept name",
						},
					},
					"required":             []any{"id", "label"},
					"additionalProperties": false,
				},
			},
			"edges": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source": map[string]any{
							"type":        "string",
							"description": "Prerequisite concept id",
						},
						"target": map[string]any{
							"type":        "string",
							"description": "Dependent concept id",
						},
					},
					"required":             []any{"source", "target"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"nodes", "edges"},
		"additionalProperties": false,
	},
}

// ExplanationSchema defines the JSON schema for concept explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "concept-explanation",
	Description: "Lecture text explaining one concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content_text": map[string]any{
				"type":        "string",
				"description": "The explanation, roughly 300 words",
			},
		},
		"required":             []any{"content_text"},
		"additionalProperties": false,
	},
}

// QuizSchema defines the JSON schema for the ten-item assessment set.
var QuizSchema = &llm.Schema{
	Name:        "concept-quiz",
	Description: "Ten multiple-choice questions with answer key",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz_items": map[string]any{
				"type":     "array",
				"minItems": QuizSize,
				"maxItems": QuizSize,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": OptionsPerItem,
							"maxItems": OptionsPerItem,
						},
						"correct_option_index": map[string]any{
							"type":    "integer",
							"minimum": 0,
							"maximum": OptionsPerItem - 1,
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is correct",
						},
					},
					"required":             []any{"question", "options", "correct_option_index", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"quiz_items"},
		"additionalProperties": false,
	},
}

// NotationSchema defines the JSON schema for the optional formula.
var NotationSchema = &llm.Schema{
	Name:        "concept-notation",
	Description: "The most relevant formula for a concept, in LaTeX, or empty",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"latex_equation": map[string]any{
				"type":        "string",
				"description": "LaTeX source, or an empty string when no formula applies",
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Why this formula matters for the concept",
			},
		},
		"required":             []any{"latex_equation", "reason"},
		"additionalProperties": false,
	},
}

// AuditSchema defines the JSON schema for content audits.
var AuditSchema = &llm.Schema{
	Name:        "content-audit",
	Description: "Hallucination risk rating for generated lecture text",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"risk_score": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"flagged_reason": map[string]any{
				"type": "string",
			},
		},
		"required":             []any{"risk_score", "flagged_reason"},
		"additionalProperties": false,
	},
}

// RemediationSchema defines the JSON schema for remedial concept proposals.
var RemediationSchema = &llm.Schema{
	Name:        "remedial-concept",
	Description: "A single missing prerequisite that explains a failed assessment",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"remedial_node_id": map[string]any{
				"type": "string",
			},
			"remedial_node_label": map[string]any{
				"type": "string",
			},
			"reason": map[string]any{
				"type": "string",
			},
		},
		"required":             []any{"remedial_node_id", "remedial_node_label", "reason"},
		"additionalProperties": false,
	},
}
