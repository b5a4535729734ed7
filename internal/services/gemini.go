package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGeminiImage = "imagen-4.0-generate-001"
)

// GeminiService implements LLMService and ImageGenerator on the Google GenAI SDK.
type GeminiService struct {
	client     *genai.Client
	modelName  string
	imageModel string
	logger     *slog.Logger
}

var (
	_ LLMService     = (*GeminiService)(nil)
	_ ImageGenerator = (*GeminiService)(nil)
)

// NewGeminiService creates a Gemini client. baseURL overrides the API endpoint and
// is empty outside tests.
func NewGeminiService(ctx context.Context, apiKey, modelName, imageModel, baseURL string, logger *slog.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if imageModel == "" {
		imageModel = DefaultGeminiImage
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiService{
		client:     client,
		modelName:  modelName,
		imageModel: imageModel,
		logger:     logger,
	}, nil
}

func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

func (g *GeminiService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	return true, nil
}

func (g *GeminiService) Generate(ctx context.Context, prompt string, params chat.GenerationParams) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	return g.generate(ctx, genai.Text(prompt), nil, params)
}

func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error) {
	systemPrompt, conversation := splitChatMessages(messages)
	if len(conversation) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	contents := make([]*genai.Content, 0, len(conversation))
	for _, m := range conversation {
		role := genai.Role(genai.RoleUser)
		if m.Role == chat.ChatRoleAgent {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	var system *genai.Content
	if systemPrompt != "" {
		system = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	text, err := g.generate(ctx, contents, system, params)
	if err != nil {
		return nil, err
	}
	return &chat.ChatResponse{Message: text}, nil
}

func (g *GeminiService) generate(ctx context.Context, contents []*genai.Content, system *genai.Content, params chat.GenerationParams) (string, error) {
	params = params.WithDefaults()
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(params.Temperature)),
		MaxOutputTokens:   int32(params.MaxTokens),
		SystemInstruction: system,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateImage renders prompt with an Imagen model.
func (g *GeminiService) GenerateImage(ctx context.Context, prompt string) (*chat.Image, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generation failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("no images returned from API")
	}
	img := resp.GeneratedImages[0].Image
	if img.MIMEType == "" {
		return newImage(img.ImageBytes)
	}
	return &chat.Image{Data: img.ImageBytes, MIMEType: img.MIMEType}, nil
}
