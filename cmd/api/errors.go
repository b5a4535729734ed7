package main

import (
	"fmt"
	"strings"
)

func errMissingKey(key string) error {
	return fmt.Errorf("%s is required for this provider", key)
}

type unsupportedProviderError struct {
	provider string
}

func (e *unsupportedProviderError) Error() string {
	return fmt.Sprintf("invalid LLM provider %q, supported: %s", e.provider,
		strings.Join([]string{"anthropic", "openai", "venice", "gemini", "ollama"}, ", "))
}
