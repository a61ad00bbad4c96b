package entity

import "fmt"

// LLMProvider selects which model backend generates form schemas.
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderOllama LLMProvider = "ollama"
	LLMProviderMock   LLMProvider = "mock"
)

func (p LLMProvider) Validate() error {
	switch p {
	case LLMProviderGemini, LLMProviderOllama, LLMProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown llm provider: %s", p)
	}
}
