// Package flux is a client for the Black Forest Labs FLUX Kontext image
// editing API.
package flux

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.bfl.ai/v1"
	DefaultModel   = "flux-kontext-pro"
)

var (
	ErrSubmitFailed     = errors.New("generation request failed")
	ErrPollingExhausted = errors.New("generation did not finish in time")
	ErrGenerationFailed = errors.New("generation failed")
	ErrMissingResult    = errors.New("generation finished without a result")
)

// Job states reported by the result endpoint.
const (
	StatusReady            = "Ready"
	StatusPending          = "Pending"
	StatusFailed           = "Failed"
	StatusError            = "Error"
	StatusTaskNotFound     = "Task not found"
	StatusRequestModerated = "Request Moderated"
	StatusContentModerated = "Content Moderated"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	poller     Poller
	backoffs   []time.Duration
}

type SubmitRequest struct {
	Prompt       string `json:"prompt"`
	InputImage   string `json:"input_image"`
	OutputFormat string `json:"output_format,omitempty"`
}

// SubmitResponse is either a job handle or, for synchronous deployments,
// the finished image.
type SubmitResponse struct {
	ID         string `json:"id"`
	PollingURL string `json:"polling_url"`
	Image      string `json:"image,omitempty"`
}

type ResultResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result *struct {
		Sample string `json:"sample"`
	} `json:"result,omitempty"`
}

func NewClient(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		poller:   NewPoller(DefaultMaxAttempts, DefaultInterval),
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// SetPoller replaces the polling schedule.
func (c *Client) SetPoller(p Poller) {
	c.poller = p
}

// SetBackoff replaces the delays used by RetryWithBackoff.
func (c *Client) SetBackoff(delays ...time.Duration) {
	c.backoffs = delays
}

// Generate submits a PNG snapshot with its prompt and waits for the
// result. It returns the result reference: a URL or a data URI.
func (c *Client) Generate(ctx context.Context, png []byte, prompt string) (string, error) {
	job, err := c.Submit(ctx, png, prompt)
	if err != nil {
		return "", err
	}
	if job.Image != "" {
		return job.Image, nil
	}
	return c.Wait(ctx, job)
}

func (c *Client) Submit(ctx context.Context, png []byte, prompt string) (*SubmitResponse, error) {
	jsonData, err := json.Marshal(SubmitRequest{
		Prompt:       prompt,
		InputImage:   base64.StdEncoding.EncodeToString(png),
		OutputFormat: "png",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrSubmitFailed, resp.StatusCode, string(body))
	}

	var result SubmitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v, body: %s", ErrSubmitFailed, err, string(body))
	}
	if result.Image == "" && result.PollingURL == "" && result.ID == "" {
		return nil, fmt.Errorf("%w: no job handle in response, body: %s", ErrSubmitFailed, string(body))
	}

	return &result, nil
}

// Wait polls a submitted job until it is ready, fails, or the poller
// gives up.
func (c *Client) Wait(ctx context.Context, job *SubmitResponse) (string, error) {
	pollingURL := job.PollingURL
	if pollingURL == "" {
		pollingURL = strings.TrimSuffix(c.baseURL, "/") + "/get_result?id=" + job.ID
	}

	var sample string
	err := c.poller.Poll(ctx, func(ctx context.Context, attempt int) (bool, error) {
		res, err := c.GetResult(ctx, pollingURL)
		if err != nil {
			return false, err
		}
		switch res.Status {
		case StatusReady:
			if res.Result == nil || res.Result.Sample == "" {
				return false, ErrMissingResult
			}
			sample = res.Result.Sample
			return true, nil
		case StatusFailed, StatusError, StatusTaskNotFound, StatusRequestModerated, StatusContentModerated:
			return false, fmt.Errorf("%w: status %q on attempt %d", ErrGenerationFailed, res.Status, attempt)
		default:
			return false, nil
		}
	})
	if err != nil {
		return "", err
	}
	return sample, nil
}

func (c *Client) GetResult(ctx context.Context, pollingURL string) (*ResultResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pollingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get result: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result ResultResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Download fetches a result reference. Result URLs are short-lived signed
// links, so transient failures are retried.
func (c *Client) Download(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		i := strings.IndexByte(ref, ',')
		if i < 0 {
			return nil, errors.New("malformed data uri")
		}
		return base64.StdEncoding.DecodeString(ref[i+1:])
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		data, err := base64.StdEncoding.DecodeString(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to decode result image: %w", err)
		}
		return data, nil
	}

	var data []byte
	err := c.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.download(ctx, ref)
		return err
	}, 3)
	return data, err
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// It stops waiting as soon as ctx is done.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(c.backoffs) && i < maxRetries-1 {
			if err := Sleep(ctx, c.backoffs[i]); err != nil {
				return fmt.Errorf("retry aborted: %w", err)
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
