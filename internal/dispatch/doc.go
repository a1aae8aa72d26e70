// Package dispatch executes the tool calls a paused run is waiting on.
//
// Policy:
//   - a handler failure is caught and recorded on its own invocation; the
//     remaining calls in the round still execute and the round is still
//     submitted, with an error placeholder standing in for the failed call,
//   - an unknown tool name resolves to a generic placeholder result instead of
//     failing the round, so one unrecognized tool never blocks the others.
//
// Every call leaves a ToolInvocation row behind, created in_progress before
// the handler runs and finalized before the run is resumed.
package dispatch
