package llm

import "encoding/json"

// responseSchema describes FormSchema as a JSON schema. Gemini receives
// it as the structured-output constraint; the prompt embeds it for
// providers that only follow instructions.
func responseSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "The root schema containing either the fields or a clarification message.",
		"properties": map[string]any{
			"clarification": map[string]any{
				"type":        "string",
				"nullable":    true,
				"description": "A message if the request is contradictory (e.g., anonymous but requires email). Should be null if fields are present.",
			},
			"fields": map[string]any{
				"type":        "array",
				"nullable":    true,
				"description": "List of fields if the request is valid. Null if clarification is present.",
				"items": map[string]any{
					"type":        "object",
					"description": "A single field definition for the generated form.",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "The unique, snake_case name for the field (e.g., 'full_name').",
						},
						"label": map[string]any{
							"type":        "string",
							"description": "The human-readable label for the field (e.g., 'Full Name').",
						},
						"type": map[string]any{
							"type":        "string",
							"description": "The input type (choose from: 'text', 'email', 'number', 'date', 'password', 'radio', 'checkbox', 'selectbox', 'textarea').",
						},
						"validation": map[string]any{
							"type":        "string",
							"description": "Comma-separated validation rules (e.g., 'required', 'email_format', 'min_length:5'). Use 'optional' if no strict rules apply.",
						},
						"options": map[string]any{
							"type":        "array",
							"nullable":    true,
							"description": "List of options for 'radio' or 'selectbox' types. Null otherwise.",
							"items":       map[string]any{"type": "string"},
						},
					},
					"required": []string{"name", "label", "type", "validation"},
				},
			},
		},
	}
}

// formatInstructions renders the schema block embedded in the prompt.
func formatInstructions() string {
	raw, err := json.MarshalIndent(responseSchema(), "", "  ")
	if err != nil {
		return ""
	}

	return "The output should be formatted as a JSON instance that conforms to the JSON schema below.\n" +
		"Here is the output schema:\n```\n" + string(raw) + "\n```"
}
