// Package chat exposes the single entry point chat surfaces call: send a
// message, get the new messages back.
//
// SendMessage composes the conflict resolver, run coordinator, tool dispatcher
// and message synchronizer:
//
//	append (retry on active run) -> start run -> poll -> [tool rounds]* -> sync
//
// A per-conversation mutex serializes the whole sequence in-process, on top of
// the resolver's reactive recovery, so concurrent sends against one
// conversation cannot race each other to the remote service. Operations on
// different conversations run independently.
package chat
