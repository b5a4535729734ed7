package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/plaidlibs/internal/handlers"
)

// APIError is a non-2xx reply. Resp is set when the API sent a view with the error.
type APIError struct {
	Status  int
	Message string
	Resp    *handlers.SessionResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
}

// apiClient talks to the PlaidLibs session API.
type apiClient struct {
	http    *http.Client
	baseURL string
}

func newAPIClient(client *http.Client, baseURL string) *apiClient {
	return &apiClient{http: client, baseURL: baseURL}
}

func (c *apiClient) testConnection() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *apiClient) workflows() (*handlers.WorkflowsResponse, error) {
	var out handlers.WorkflowsResponse
	if err := c.do(http.MethodGet, "/v1/workflows", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) createSession(workflow, narrator string) (*handlers.SessionResponse, error) {
	var out handlers.SessionResponse
	body := handlers.CreateSessionRequest{Workflow: workflow, Narrator: narrator}
	if err := c.do(http.MethodPost, "/v1/sessions", body, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) answer(id uuid.UUID, answer string) (*handlers.SessionResponse, error) {
	return c.action(id, "answer", handlers.AnswerRequest{Answer: answer})
}

func (c *apiClient) restart(id uuid.UUID) (*handlers.SessionResponse, error) {
	return c.action(id, "restart", nil)
}

func (c *apiClient) generate(id uuid.UUID) (*handlers.SessionResponse, error) {
	return c.action(id, "generate", nil)
}

func (c *apiClient) remix(id uuid.UUID, option string) (*handlers.SessionResponse, error) {
	return c.action(id, "remix", handlers.RemixRequest{Option: option})
}

func (c *apiClient) setNarrator(id uuid.UUID, narrator string) (*handlers.SessionResponse, error) {
	return c.action(id, "narrator", handlers.NarratorRequest{Narrator: narrator})
}

func (c *apiClient) switchWorkflow(id uuid.UUID, workflow string) (*handlers.SessionResponse, error) {
	return c.action(id, "workflow", handlers.WorkflowRequest{Workflow: workflow})
}

// action posts to a session endpoint. A reply carrying a view is returned even
// when the status is an error, alongside an *APIError.
func (c *apiClient) action(id uuid.UUID, name string, body any) (*handlers.SessionResponse, error) {
	var out handlers.SessionResponse
	err := c.do(http.MethodPost, fmt.Sprintf("/v1/sessions/%s/%s", id, name), body, http.StatusOK, &out)
	if apiErr, ok := err.(*APIError); ok && apiErr.Resp != nil {
		return apiErr.Resp, err
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// uploadImage posts raw image bytes for the PlaidPic description step.
func (c *apiClient) uploadImage(id uuid.UUID, data []byte) (*handlers.SessionResponse, error) {
	resp, err := c.http.Post(fmt.Sprintf("%s/v1/sessions/%s/image", c.baseURL, id),
		http.DetectContentType(data), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp.StatusCode, body)
		return apiErr.Resp, apiErr
	}
	var out handlers.SessionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func (c *apiClient) download(id uuid.UUID, format string) ([]byte, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/v1/sessions/%s/download?format=%s", c.baseURL, id, format))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *apiClient) do(method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(jsonData)
	}
	req, err := http.NewRequest(method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return decodeAPIError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{Status: status, Message: string(bytes.TrimSpace(data))}
	var withView handlers.SessionResponse
	if err := json.Unmarshal(data, &withView); err == nil && withView.ID != uuid.Nil {
		apiErr.Message = withView.Error
		apiErr.Resp = &withView
		return apiErr
	}
	var errorResp handlers.ErrorResponse
	if err := json.Unmarshal(data, &errorResp); err == nil && errorResp.Error != "" {
		apiErr.Message = errorResp.Error
	}
	return apiErr
}
