// Package domain holds the persisted records of the chat core.
//
// Includes:
//   - Conversation: local handle for a remote thread plus its assistant binding.
//   - Message: one turn; ExternalRef is the dedup key against the remote transcript.
//   - ToolInvocation: one executed tool call, finalized before the run resumes.
//
// Invariant:
//   - within a conversation, non-empty Message.ExternalRef values are unique.
package domain
