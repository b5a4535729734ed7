package chat

import "testing"

func TestGenerationParams_WithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   GenerationParams
		want GenerationParams
	}{
		{"zero value", GenerationParams{}, GenerationParams{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}},
		{"keeps set values", GenerationParams{Temperature: 0.2, MaxTokens: 50}, GenerationParams{Temperature: 0.2, MaxTokens: 50}},
		{"negative temperature", GenerationParams{Temperature: -1, MaxTokens: 10}, GenerationParams{Temperature: DefaultTemperature, MaxTokens: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.WithDefaults(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestChatRequest_Validate(t *testing.T) {
	if err := (&ChatRequest{Message: "   "}).Validate(); err == nil {
		t.Error("expected error for blank message")
	}
	if err := (&ChatRequest{Message: "hello MacQuip"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
