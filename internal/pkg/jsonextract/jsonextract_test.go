package jsonextract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_FencedBlock(t *testing.T) {
	raw := "Here is your form:\n```json\n{\"fields\": []}\n```\nLet me know!"

	assert.Equal(t, `{"fields": []}`, Extract(raw))
}

func TestExtract_FencedBlockExactBody(t *testing.T) {
	raw := "```json\n  {\"fields\": []}  \n```"

	assert.Equal(t, `{"fields": []}`, Extract(raw))
}

func TestExtract_BracesInsideProse(t *testing.T) {
	raw := `The schema follows. {"clarification": "which fields?"} Hope that helps.`

	assert.Equal(t, `{"clarification": "which fields?"}`, Extract(raw))
}

func TestExtract_PlainFenceFallsBackToBraces(t *testing.T) {
	raw := "```\n{\"fields\": []}\n```"

	assert.Equal(t, `{"fields": []}`, Extract(raw))
}

func TestExtract_NoJSONReturnsInputUnchanged(t *testing.T) {
	raw := "sorry, I could not build that form"

	assert.Equal(t, raw, Extract(raw))
}

func TestExtract_ReversedBracesReturnsInputUnchanged(t *testing.T) {
	raw := "} nothing here {"

	assert.Equal(t, raw, Extract(raw))
}

func TestExtract_ResultShapeInvariant(t *testing.T) {
	inputs := []string{
		"```json\n{\"a\": 1}\n```",
		`leading {"a": {"b": 2}} trailing`,
		"{}",
		"no braces at all",
		"",
	}

	for _, in := range inputs {
		out := Extract(in)
		bracketed := strings.HasPrefix(out, "{") && strings.HasSuffix(out, "}")
		if !bracketed {
			assert.Equal(t, in, out, "non-bracketed output must be the unchanged input")
		}
	}
}

func TestExtract_NestedObjectKeepsOuterBraces(t *testing.T) {
	raw := `x {"fields": [{"name": "age"}]} y`

	assert.Equal(t, `{"fields": [{"name": "age"}]}`, Extract(raw))
}
