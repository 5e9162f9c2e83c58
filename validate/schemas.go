// Package validate implements the schema registry and validator (C1): a
// fixed set of named draft-07 JSON schemas compiled once at startup, plus
// a runtime registration hook for operational extension.
package validate

// StoryRequestSchema is the contract for orchestrator -> story agent.
const StoryRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "StoryRequest",
	"type": "object",
	"required": ["culture", "theme"],
	"properties": {
		"culture": {"type": "string"},
		"theme": {"type": "string", "enum": ["trickster", "creation", "wisdom", "courage", "love", "origin", "moral"]},
		"complexity": {"type": "string", "enum": ["child", "teen", "adult"]},
		"continuation": {"type": "boolean"},
		"session_context": {"type": "string"}
	},
	"additionalProperties": false
}`

// StoryChunkSchema is the story agent's per-chunk output contract.
const StoryChunkSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "StoryChunk",
	"type": "object",
	"required": ["text", "culture"],
	"properties": {
		"text": {"type": "string", "minLength": 1},
		"culture": {"type": "string"},
		"cultural_claims": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["claim", "category"],
				"properties": {
					"claim": {"type": "string"},
					"category": {"type": "string", "enum": ["proverb", "custom", "character", "location", "language", "historical"]}
				}
			}
		},
		"scene_description": {"type": "string"},
		"is_final": {"type": "boolean"}
	},
	"additionalProperties": false
}`

// ValidatedChunkSchema is the cultural validator's output contract.
const ValidatedChunkSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "ValidatedChunk",
	"type": "object",
	"required": ["text", "confidence"],
	"properties": {
		"text": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0.0, "maximum": 1.0},
		"corrections": {"type": "array", "items": {"type": "string"}},
		"rejected_claims": {"type": "array", "items": {"type": "string"}},
		"is_final": {"type": "boolean"}
	},
	"additionalProperties": false
}`

// RiddleRequestSchema is the contract for orchestrator -> riddle agent.
const RiddleRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "RiddleRequest",
	"type": "object",
	"required": ["culture"],
	"properties": {
		"culture": {"type": "string"},
		"difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
		"session_context": {"type": "string"}
	},
	"additionalProperties": false
}`

// RiddlePayloadSchema is the riddle agent's output contract.
const RiddlePayloadSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "RiddlePayload",
	"type": "object",
	"required": ["opening", "riddle_text", "answer", "culture"],
	"properties": {
		"opening": {"type": "string"},
		"riddle_text": {"type": "string"},
		"answer": {"type": "string"},
		"hints": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 3},
		"explanation": {"type": "string"},
		"culture": {"type": "string"},
		"is_traditional": {"type": "boolean"}
	},
	"additionalProperties": false
}`

// ImageRequestSchema is the contract for orchestrator -> visual agent.
const ImageRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "ImageRequest",
	"type": "object",
	"required": ["scene_description", "culture"],
	"properties": {
		"scene_description": {"type": "string", "minLength": 10},
		"culture": {"type": "string"},
		"aspect_ratio": {"type": "string", "enum": ["16:9", "1:1", "9:16"]}
	},
	"additionalProperties": false
}`

// ImageResultSchema is the visual agent's output contract.
const ImageResultSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "ImageResult",
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string", "enum": ["success", "failed", "skipped"]},
		"url": {"type": "string"},
		"error": {"type": "string"}
	},
	"additionalProperties": false
}`

// defaultSchemas is the fixed set loaded by NewRegistry.
var defaultSchemas = map[string]string{
	"StoryRequest":   StoryRequestSchema,
	"StoryChunk":     StoryChunkSchema,
	"ValidatedChunk": ValidatedChunkSchema,
	"RiddleRequest":  RiddleRequestSchema,
	"RiddlePayload":  RiddlePayloadSchema,
	"ImageRequest":   ImageRequestSchema,
	"ImageResult":    ImageResultSchema,
}
