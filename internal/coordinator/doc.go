// Package coordinator owns the run lifecycle for one send-message operation.
//
// Flow:
//
//	StartRun -> AwaitTerminal -> [requires_action -> resolve tools -> submit -> AwaitTerminal]* -> terminal
//
// Invariants:
//   - polling is bounded: AwaitTerminal returns or fails within Timeout plus
//     one poll interval, cancelling the remote run best-effort on expiry,
//   - tool rounds are bounded: Resolve fails closed with ErrTooManyToolRounds
//     instead of looping forever on an assistant that keeps requesting tools,
//   - terminal states are surfaced as-is; the coordinator never retries a
//     failed, cancelled or expired run.
package coordinator
