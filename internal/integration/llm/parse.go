package llm

import (
	"encoding/json"
	"fmt"

	"github.com/formloom/forms-backend/internal/entity"
	"github.com/formloom/forms-backend/internal/pkg/jsonextract"
)

// parseSchema cleans raw model output and decodes it into a FormSchema.
func parseSchema(raw string) (*entity.FormSchema, error) {
	cleaned := jsonextract.Extract(raw)

	var schema entity.FormSchema
	if err := json.Unmarshal([]byte(cleaned), &schema); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	return &schema, nil
}
