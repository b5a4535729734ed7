package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

const (
	chatGPTBaseURL      = "https://api.openai.com/v1"
	DefaultChatGPTImage = "gpt-image-1"
	chatGPTImageSize    = "1024x1024"
)

// ChatGPTService implements LLMService and ImageGenerator for OpenAI
type ChatGPTService struct {
	apiKey     string
	modelName  string
	imageModel string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ LLMService     = (*ChatGPTService)(nil)
	_ ImageGenerator = (*ChatGPTService)(nil)
)

type ChatGPTChatRequest struct {
	Model               string             `json:"model"`
	Messages            []chat.ChatMessage `json:"messages"`
	Temperature         float64            `json:"temperature,omitempty"`
	MaxCompletionTokens int                `json:"max_completion_tokens,omitempty"`
}

type ChatGPTChatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Refusal string `json:"refusal,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatGPTError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type ChatGPTChatResponse struct {
	ID      string              `json:"id"`
	Model   string              `json:"model"`
	Choices []ChatGPTChatChoice `json:"choices"`
	Error   *chatGPTError       `json:"error,omitempty"`
}

type ChatGPTImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

type ChatGPTImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json,omitempty"`
		URL     string `json:"url,omitempty"`
	} `json:"data"`
	Error *chatGPTError `json:"error,omitempty"`
}

// NewChatGPTService creates an OpenAI service. imageModel defaults to gpt-image-1.
func NewChatGPTService(apiKey, modelName, imageModel string, logger *slog.Logger) *ChatGPTService {
	if imageModel == "" {
		imageModel = DefaultChatGPTImage
	}
	return &ChatGPTService{
		apiKey:     apiKey,
		modelName:  modelName,
		imageModel: imageModel,
		baseURL:    chatGPTBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second, // ChatGPT can be slower than other APIs
		},
		logger: logger,
	}
}

// InitModel initializes the model (ChatGPT doesn't require explicit model initialization)
func (c *ChatGPTService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// IsModelReady checks if the model is ready (always true for ChatGPT)
func (c *ChatGPTService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	return true, nil
}

func (c *ChatGPTService) Generate(ctx context.Context, prompt string, params chat.GenerationParams) (string, error) {
	messages, err := promptMessages(prompt)
	if err != nil {
		return "", err
	}
	resp, err := c.Chat(ctx, messages, params)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *ChatGPTService) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.GenerationParams) (*chat.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	params = params.WithDefaults()

	var chatResp ChatGPTChatResponse
	err := c.post(ctx, "/chat/completions", ChatGPTChatRequest{
		Model:               c.modelName,
		Messages:            messages,
		Temperature:         params.Temperature,
		MaxCompletionTokens: params.MaxTokens,
	}, &chatResp)
	if err != nil {
		return nil, err
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choice := chatResp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("model refused to respond: %s", choice.Message.Refusal)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, ErrEmptyResponse
	}
	return &chat.ChatResponse{Message: choice.Message.Content}, nil
}

// GenerateImage renders prompt with the images endpoint.
func (c *ChatGPTService) GenerateImage(ctx context.Context, prompt string) (*chat.Image, error) {
	var imgResp ChatGPTImageResponse
	err := c.post(ctx, "/images/generations", ChatGPTImageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   chatGPTImageSize,
	}, &imgResp)
	if err != nil {
		return nil, err
	}
	if imgResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", imgResp.Error.Message)
	}
	if len(imgResp.Data) == 0 {
		return nil, fmt.Errorf("no images returned from API")
	}
	if b64 := imgResp.Data[0].B64JSON; b64 != "" {
		return decodeImage(b64)
	}
	if url := imgResp.Data[0].URL; url != "" {
		return fetchImage(ctx, c.httpClient, url)
	}
	return nil, fmt.Errorf("image response carried no data")
}

func (c *ChatGPTService) post(ctx context.Context, path string, payload, out any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenAI API returned error", "path", path, "status_code", resp.StatusCode)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
