package execsvc

import "context"

// RunStatus is the remote run lifecycle state as reported by the service.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
)

// Terminal reports whether the run can make no further progress.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunFailed, RunCancelled, RunExpired:
		return true
	}
	return false
}

// Active reports whether the run still occupies the thread.
func (s RunStatus) Active() bool {
	return s == RunQueued || s == RunInProgress
}

// ToolCall is one tool execution requested by a paused run. Arguments is the
// raw JSON-encoded argument object exactly as the service produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// RunState is a point-in-time view of a run obtained by polling.
type RunState struct {
	ID        string
	Status    RunStatus
	ToolCalls []ToolCall
	LastError string
}

// ToolOutput is the result of one tool call, submitted back to the service.
type ToolOutput struct {
	CallID string
	Output string
}

// ContentPart is one piece of a remote message body.
type ContentPart struct {
	Type string
	Text string
}

// ThreadMessage is a message as stored in the remote transcript.
type ThreadMessage struct {
	ID      string
	Role    string
	Content []ContentPart
}

// Text joins the message's text parts into a single string.
func (m ThreadMessage) Text() string {
	var out string
	for _, p := range m.Content {
		if p.Type == "text" {
			out += p.Text
		}
	}
	return out
}

// Client is the execution-service contract the orchestration core depends on.
// Implementations must return *ActiveRunError from AddMessage when the thread
// has a run in flight, and CancelRun must not fail on already-terminal runs.
type Client interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, role, content string) (string, error)
	CreateRun(ctx context.Context, threadID, assistantID string) (RunState, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (RunState, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (RunState, error)
	CancelRun(ctx context.Context, threadID, runID string) error
	ListRuns(ctx context.Context, threadID string) ([]RunState, error)
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)
}
