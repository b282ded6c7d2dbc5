package verdict

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

// systemInstruction is the fixed instruction sent ahead of every prompt.
const systemInstruction = "Return ONLY a JSON object with keys: " +
	`"prompt" (string), "result" (string or {"error": "jailbreak prompt"}), ` +
	`"result_code" (integer). Output nothing else.`

var (
	defaultPromptOnce sync.Once
	defaultPrompt     string
)

// DefaultSystemPrompt returns the instruction followed by the JSON schema of Verdict.
func DefaultSystemPrompt() string {
	defaultPromptOnce.Do(func() {
		defaultPrompt = systemInstruction + "\n\nSchema:\n" + generateJSONSchema[Verdict]()
	})
	return defaultPrompt
}

// BuildMessages returns the two-message request for one prompt: instruction, then input.
func BuildMessages(systemPrompt, text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: `Input: "` + text + `"`},
	}
}

// generateJSONSchema creates a JSON Schema from a Go type using sentinel.
func generateJSONSchema[T any]() string {
	metadata := sentinel.Inspect[T]()

	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           buildProperties(metadata.Fields),
		"required":             buildRequiredFields(metadata.Fields),
		"additionalProperties": false,
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(jsonBytes)
}

// buildProperties converts field metadata to JSON Schema properties.
func buildProperties(fields []sentinel.FieldMetadata) map[string]interface{} {
	properties := make(map[string]interface{})

	for _, field := range fields {
		jsonName := getJSONFieldName(field)
		if jsonName == "-" {
			continue
		}

		prop := map[string]interface{}{}
		if jsonType := goTypeToJSONType(field.Type); jsonType != "" {
			prop["type"] = jsonType
		}
		if desc, ok := field.Tags["desc"]; ok {
			prop["description"] = desc
		}
		properties[jsonName] = prop
	}

	return properties
}

// buildRequiredFields lists every field without omitempty.
func buildRequiredFields(fields []sentinel.FieldMetadata) []string {
	var required []string

	for _, field := range fields {
		jsonName := getJSONFieldName(field)
		if jsonName == "-" {
			continue
		}
		if !hasOmitempty(field) {
			required = append(required, jsonName)
		}
	}

	return required
}

// getJSONFieldName extracts the JSON field name from metadata.
func getJSONFieldName(field sentinel.FieldMetadata) string {
	if jsonTag, ok := field.Tags["json"]; ok {
		parts := strings.Split(jsonTag, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0]
		}
	}

	return strings.ToLower(field.Name[:1]) + field.Name[1:]
}

func hasOmitempty(field sentinel.FieldMetadata) bool {
	if jsonTag, ok := field.Tags["json"]; ok {
		return strings.Contains(jsonTag, "omitempty")
	}
	return false
}

// goTypeToJSONType maps Go types to JSON Schema types.
// Interface types accept any JSON value and get no type constraint.
func goTypeToJSONType(goType string) string {
	switch {
	case strings.HasPrefix(goType, "interface"), goType == "any":
		return ""
	case strings.HasPrefix(goType, "string"):
		return "string"
	case strings.HasPrefix(goType, "int"), strings.HasPrefix(goType, "uint"):
		return "integer"
	case strings.HasPrefix(goType, "float"):
		return "number"
	case strings.HasPrefix(goType, "bool"):
		return "boolean"
	case strings.HasPrefix(goType, "[]"):
		return "array"
	default:
		return "object"
	}
}
