// Package client provides a Go client for the trustsum HTTP API.
//
// It covers synchronous summarization and asynchronous batch runs:
//   - Summarize sends texts and returns every artifact of the pipeline.
//   - StartRun, GetRun and WaitRun drive batch runs over the server's dataset.
//
// The client handles HTTP communication, JSON serialization and standardized
// error handling.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanonone/trustsum/pkg/engine"
	"github.com/sanonone/trustsum/pkg/rouge"
)

// --- Custom Errors ---

// APIError represents an error returned by the API (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// --- JSON Request/Response Structs ---

// SummarizeRequest is the body of a summarization call. Parameters, when set,
// replaces the server's parameters field by field.
type SummarizeRequest struct {
	Name       string         `json:"name,omitempty"`
	Text       string         `json:"text,omitempty"`
	Texts      []string       `json:"texts,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// DocumentReport is the outcome of one document of a run.
type DocumentReport struct {
	Name          string        `json:"name"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	Kind          string        `json:"kind,omitempty"`
	RuntimeMillis float64       `json:"runtime_ms"`
	Best          *rouge.Result `json:"best,omitempty"`
	Candidates    int           `json:"candidates"`
	Converged     bool          `json:"converged"`
	Outputs       []string      `json:"outputs,omitempty"`
}

// RunReport summarizes a finished run.
type RunReport struct {
	RunID          string           `json:"run_id"`
	StartedAt      time.Time        `json:"started_at"`
	DurationMillis float64          `json:"duration_ms"`
	Failed         int              `json:"failed"`
	Documents      []DocumentReport `json:"documents"`
}

// Run represents an asynchronous batch run on the server.
type Run struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Total     int        `json:"total"`
	Processed int        `json:"processed"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Report    *RunReport `json:"report,omitempty"`
}

// Done reports whether the run reached a final status.
func (r *Run) Done() bool {
	return r.Status == "completed" || r.Status == "failed"
}

// --- Client ---

// Client is the Go client for the trustsum API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for http://host:port. token may be empty.
func New(host string, port int, token string) *Client {
	return NewFromURL(fmt.Sprintf("http://%s:%d", host, port), token)
}

// NewFromURL creates a client for a base URL such as "http://localhost:9191".
func NewFromURL(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// jsonRequest executes a request, handling JSON serialization and API errors.
func (c *Client) jsonRequest(method, endpoint string, payload any, out any) error {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp["error"]}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// --- Summarization ---

// Summarize runs the pipeline on the server and returns every artifact.
func (c *Client) Summarize(req SummarizeRequest) (*engine.Result, error) {
	var res engine.Result
	if err := c.jsonRequest(http.MethodPost, "/summarize", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Batch Runs ---

// StartRun starts a batch run over files, or over the whole dataset minus
// exclude when files is empty.
func (c *Client) StartRun(files, exclude []string) (*Run, error) {
	payload := map[string][]string{}
	if len(files) > 0 {
		payload["files"] = files
	}
	if len(exclude) > 0 {
		payload["exclude"] = exclude
	}
	var run Run
	if err := c.jsonRequest(http.MethodPost, "/runs", payload, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(id string) (*Run, error) {
	var run Run
	if err := c.jsonRequest(http.MethodGet, "/runs/"+id, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// WaitRun polls a run until it completes, fails or timeout elapses.
// A failed run is returned together with an error.
func (c *Client) WaitRun(id string, interval, timeout time.Duration) (*Run, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		run, err := c.GetRun(id)
		if err != nil {
			return nil, err
		}
		switch run.Status {
		case "completed":
			return run, nil
		case "failed":
			return run, fmt.Errorf("run %s failed with error: %s", id, run.Error)
		case "running", "started":
			// Continue waiting.
		default:
			return run, fmt.Errorf("unknown run status: %s", run.Status)
		}

		select {
		case <-timer.C:
			return run, fmt.Errorf("timeout exceeded while waiting for run %s", id)
		case <-ticker.C:
		}
	}
}

// Healthz checks that the server is up.
func (c *Client) Healthz() error {
	return c.jsonRequest(http.MethodGet, "/healthz", nil, nil)
}
