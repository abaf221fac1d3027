package sdapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/camden-git/personagen/config"
)

// Client talks to a Stable Diffusion WebUI instance over its txt2img API.
// Generation parameters are fixed from configuration, not per-record.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cfg        config.Config
}

// NewClient creates an image generation client against cfg.SDAPIURL.
func NewClient(cfg config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.SDAPIURL, "/"),
		cfg:        cfg,
	}
}

type txt2imgRequest struct {
	Prompt           string            `json:"prompt"`
	NegativePrompt   string            `json:"negative_prompt"`
	Steps            int               `json:"steps"`
	SamplerName      string            `json:"sampler_name"`
	CFGScale         float64           `json:"cfg_scale"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	Seed             int64             `json:"seed"`
	RestoreFaces     bool              `json:"restore_faces"`
	BatchSize        int               `json:"batch_size"`
	OverrideSettings map[string]string `json:"override_settings"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// Txt2Img submits the prompt pair with the configured generation parameters
// and returns the first image decoded from its base64 payload.
func (c *Client) Txt2Img(ctx context.Context, positivePrompt, negativePrompt string) ([]byte, error) {
	reqBody := txt2imgRequest{
		Prompt:         positivePrompt,
		NegativePrompt: negativePrompt,
		Steps:          c.cfg.Steps,
		SamplerName:    c.cfg.SamplerName,
		CFGScale:       c.cfg.CFGScale,
		Width:          c.cfg.Width,
		Height:         c.cfg.Height,
		Seed:           c.cfg.Seed,
		RestoreFaces:   c.cfg.RestoreFaces,
		BatchSize:      1,
		OverrideSettings: map[string]string{
			"sd_model_checkpoint": c.cfg.SDCheckpoint,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode txt2img request: %w", err)
	}

	reqURL := c.baseURL + "/sdapi/v1/txt2img"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create txt2img request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txt2img request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("txt2img API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode txt2img response: %w", err)
	}

	if len(result.Images) == 0 {
		return nil, fmt.Errorf("txt2img response contains no images")
	}

	imageBytes, err := base64.StdEncoding.DecodeString(result.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image payload: %w", err)
	}

	return imageBytes, nil
}

// Ping probes the service's base address. Any HTTP response counts as
// reachable; only transport-level failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(pingCtx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image generation endpoint %s is unreachable: %w", c.baseURL, err)
	}
	resp.Body.Close()
	return nil
}
