package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
)

// maxImageBytes caps downloaded images.
const maxImageBytes = 20 << 20

// decodeImage turns a base64 payload (optionally a data: URL) into image bytes.
func decodeImage(payload string) (*chat.Image, error) {
	if i := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && i > 0 {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return newImage(data)
}

func newImage(data []byte) (*chat.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("unexpected image content type %q", mime)
	}
	return &chat.Image{Data: data, MIMEType: mime}, nil
}

// fetchImage downloads an image a provider returned by URL.
func fetchImage(ctx context.Context, client *http.Client, url string) (*chat.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return newImage(data)
}
