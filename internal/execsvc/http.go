package execsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultRequestTimeout = 30 * time.Second

// HTTPClient is the REST adapter for the execution service.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient builds an adapter for the service at baseURL. A zero timeout
// falls back to 30s per request.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPTransport swaps the underlying transport. Tests use it to intercept
// requests.
func (c *HTTPClient) SetHTTPTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// do performs one request and returns the raw response body. Non-2xx responses
// are mapped onto the package error taxonomy: an "active run" rejection becomes
// *ActiveRunError, everything else *ExecutionError.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &ExecutionError{Op: op, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &ExecutionError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ExecutionError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExecutionError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		err := errors.New(msg)
		if isActiveRunMessage(msg) {
			threadID := threadIDFromPath(path)
			return nil, &ActiveRunError{ThreadID: threadID, Err: err}
		}
		return nil, &ExecutionError{Op: op, Status: resp.StatusCode, Err: err}
	}
	return data, nil
}

// isActiveRunMessage matches the service's rejection for mutations against a
// thread with a run in flight. The service words this a few different ways, so
// match on the two tokens that always appear.
func isActiveRunMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "run") && strings.Contains(lower, "active")
}

func threadIDFromPath(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "threads" {
		return parts[1]
	}
	return ""
}

func (c *HTTPClient) CreateThread(ctx context.Context) (string, error) {
	data, err := c.do(ctx, "create_thread", http.MethodPost, "/threads", struct{}{})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "id").String(), nil
}

func (c *HTTPClient) AddMessage(ctx context.Context, threadID, role, content string) (string, error) {
	body := map[string]string{"role": role, "content": content}
	data, err := c.do(ctx, "add_message", http.MethodPost, fmt.Sprintf("/threads/%s/messages", threadID), body)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(data, "id").String(), nil
}

func (c *HTTPClient) CreateRun(ctx context.Context, threadID, assistantID string) (RunState, error) {
	body := map[string]string{"assistant_id": assistantID}
	data, err := c.do(ctx, "create_run", http.MethodPost, fmt.Sprintf("/threads/%s/runs", threadID), body)
	if err != nil {
		return RunState{}, err
	}
	return parseRun(gjson.ParseBytes(data)), nil
}

func (c *HTTPClient) RetrieveRun(ctx context.Context, threadID, runID string) (RunState, error) {
	data, err := c.do(ctx, "retrieve_run", http.MethodGet, fmt.Sprintf("/threads/%s/runs/%s", threadID, runID), nil)
	if err != nil {
		return RunState{}, err
	}
	return parseRun(gjson.ParseBytes(data)), nil
}

func (c *HTTPClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (RunState, error) {
	type wireOutput struct {
		ToolCallID string `json:"tool_call_id"`
		Output     string `json:"output"`
	}
	body := struct {
		ToolOutputs []wireOutput `json:"tool_outputs"`
	}{}
	for _, o := range outputs {
		body.ToolOutputs = append(body.ToolOutputs, wireOutput{ToolCallID: o.CallID, Output: o.Output})
	}

	path := fmt.Sprintf("/threads/%s/runs/%s/submit_tool_outputs", threadID, runID)
	data, err := c.do(ctx, "submit_tool_outputs", http.MethodPost, path, body)
	if err != nil {
		return RunState{}, err
	}
	return parseRun(gjson.ParseBytes(data)), nil
}

// CancelRun is best-effort: cancelling a run that already reached a terminal
// state gets a 4xx from the service, and that is not a failure here. Transport
// and server-side errors still surface.
func (c *HTTPClient) CancelRun(ctx context.Context, threadID, runID string) error {
	path := fmt.Sprintf("/threads/%s/runs/%s/cancel", threadID, runID)
	_, err := c.do(ctx, "cancel_run", http.MethodPost, path, struct{}{})
	if err != nil {
		var ee *ExecutionError
		if errors.As(err, &ee) && ee.Status >= 400 && ee.Status < 500 {
			return nil
		}
		return err
	}
	return nil
}

func (c *HTTPClient) ListRuns(ctx context.Context, threadID string) ([]RunState, error) {
	data, err := c.do(ctx, "list_runs", http.MethodGet, fmt.Sprintf("/threads/%s/runs", threadID), nil)
	if err != nil {
		return nil, err
	}
	var runs []RunState
	for _, item := range gjson.GetBytes(data, "data").Array() {
		runs = append(runs, parseRun(item))
	}
	return runs, nil
}

// ListMessages fetches the transcript oldest first.
func (c *HTTPClient) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	path := fmt.Sprintf("/threads/%s/messages?order=asc", threadID)
	data, err := c.do(ctx, "list_messages", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var msgs []ThreadMessage
	for _, item := range gjson.GetBytes(data, "data").Array() {
		msg := ThreadMessage{
			ID:   item.Get("id").String(),
			Role: item.Get("role").String(),
		}
		for _, part := range item.Get("content").Array() {
			msg.Content = append(msg.Content, ContentPart{
				Type: part.Get("type").String(),
				Text: part.Get("text.value").String(),
			})
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// parseRun reads the service's run representation, including the tool calls a
// paused run is waiting on.
func parseRun(r gjson.Result) RunState {
	state := RunState{
		ID:        r.Get("id").String(),
		Status:    RunStatus(r.Get("status").String()),
		LastError: r.Get("last_error.message").String(),
	}
	for _, call := range r.Get("required_action.submit_tool_outputs.tool_calls").Array() {
		state.ToolCalls = append(state.ToolCalls, ToolCall{
			ID:        call.Get("id").String(),
			Name:      call.Get("function.name").String(),
			Arguments: call.Get("function.arguments").String(),
		})
	}
	return state
}
