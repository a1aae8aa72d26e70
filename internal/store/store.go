// Package store persists conversations, messages and tool invocations in
// SQLite.
//
// Invariants enforced by the schema:
//   - non-null message external refs are unique per conversation (dedup key),
//   - tool invocation call refs are unique,
//   - message seq is monotonically increasing within a conversation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ramiro/assistant-core/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id              TEXT PRIMARY KEY,
	thread_ref      TEXT,
	assistant_ref   TEXT NOT NULL,
	participant_ref TEXT,
	status          TEXT NOT NULL DEFAULT 'active',
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id),
	role            TEXT NOT NULL,
	content         TEXT NOT NULL DEFAULT '',
	external_ref    TEXT,
	seq             INTEGER NOT NULL,
	created_at      TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_external_ref
	ON messages(conversation_id, external_ref) WHERE external_ref IS NOT NULL;

CREATE TABLE IF NOT EXISTS tool_invocations (
	id         TEXT PRIMARY KEY,
	message_id TEXT NOT NULL REFERENCES messages(id),
	tool_name  TEXT NOT NULL,
	input      TEXT NOT NULL DEFAULT '',
	output     TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	call_ref   TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL
);
`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateConversation inserts conv, assigning ID, status and creation time when
// unset.
func (s *Store) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Status == "" {
		conv.Status = domain.ConversationActive
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, thread_ref, assistant_ref, participant_ref, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		conv.ID, nullable(conv.ThreadRef), conv.AssistantRef, nullable(conv.ParticipantRef), conv.Status, conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// GetConversation loads one conversation by local id.
func (s *Store) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, thread_ref, assistant_ref, participant_ref, status, created_at
		 FROM conversations WHERE id = ?`, id)

	var conv domain.Conversation
	var threadRef, participantRef sql.NullString
	if err := row.Scan(&conv.ID, &threadRef, &conv.AssistantRef, &participantRef, &conv.Status, &conv.CreatedAt); err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", id, err)
	}
	conv.ThreadRef = threadRef.String
	conv.ParticipantRef = participantRef.String
	return &conv, nil
}

// SetThreadRef records the remote thread created for a conversation.
func (s *Store) SetThreadRef(ctx context.Context, conversationID, threadRef string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversations SET thread_ref = ? WHERE id = ?`, threadRef, conversationID)
	if err != nil {
		return fmt.Errorf("set thread ref: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("set thread ref: conversation %s not found", conversationID)
	}
	return nil
}

// CreateMessage inserts msg, assigning ID, creation time and the next seq in
// the conversation. An empty ExternalRef is stored as NULL so the dedup index
// only covers confirmed refs.
func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?`, msg.ConversationID)
	if err := row.Scan(&msg.Seq); err != nil {
		return fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, external_ref, seq, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, nullable(msg.ExternalRef), msg.Seq, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return tx.Commit()
}

// AttachExternalRef confirms a local message against the remote service. It is
// the only mutation messages ever receive.
func (s *Store) AttachExternalRef(ctx context.Context, messageID, externalRef string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET external_ref = ? WHERE id = ? AND external_ref IS NULL`,
		externalRef, messageID)
	if err != nil {
		return fmt.Errorf("attach external ref: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("attach external ref: message %s not found or already confirmed", messageID)
	}
	return nil
}

// ExternalRefs returns the set of confirmed external refs in a conversation.
func (s *Store) ExternalRefs(ctx context.Context, conversationID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT external_ref FROM messages WHERE conversation_id = ? AND external_ref IS NOT NULL`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("query external refs: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]struct{})
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		refs[ref] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return refs, nil
}

// MessagesByConversation returns all messages in creation order.
func (s *Store) MessagesByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, external_ref, seq, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY seq`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var extRef sql.NullString
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &extRef, &m.Seq, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		m.ExternalRef = extRef.String
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return msgs, nil
}

// CreateInvocation inserts inv, assigning ID and creation time when unset.
func (s *Store) CreateInvocation(ctx context.Context, inv *domain.ToolInvocation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.Status == "" {
		inv.Status = domain.InvocationPending
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tool_invocations (id, message_id, tool_name, input, output, status, error, call_ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.MessageID, inv.ToolName, inv.Input, inv.Output, inv.Status, inv.Error, inv.CallRef, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// FinishInvocation records the outcome of one tool call before the run is
// resumed.
func (s *Store) FinishInvocation(ctx context.Context, id, status, output, errDetail string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tool_invocations SET status = ?, output = ?, error = ? WHERE id = ?`,
		status, output, errDetail, id)
	if err != nil {
		return fmt.Errorf("finish invocation: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("finish invocation: %s not found", id)
	}
	return nil
}

// InvocationByCallRef looks up an invocation by the run's tool-call identifier.
func (s *Store) InvocationByCallRef(ctx context.Context, callRef string) (*domain.ToolInvocation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, message_id, tool_name, input, output, status, error, call_ref, created_at
		 FROM tool_invocations WHERE call_ref = ?`, callRef)

	var inv domain.ToolInvocation
	if err := row.Scan(&inv.ID, &inv.MessageID, &inv.ToolName, &inv.Input, &inv.Output,
		&inv.Status, &inv.Error, &inv.CallRef, &inv.CreatedAt); err != nil {
		return nil, fmt.Errorf("load invocation %s: %w", callRef, err)
	}
	return &inv, nil
}

// InvocationsByConversation returns all invocations recorded for a
// conversation's messages, oldest first.
func (s *Store) InvocationsByConversation(ctx context.Context, conversationID string) ([]domain.ToolInvocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ti.id, ti.message_id, ti.tool_name, ti.input, ti.output, ti.status, ti.error, ti.call_ref, ti.created_at
		 FROM tool_invocations ti
		 JOIN messages m ON m.id = ti.message_id
		 WHERE m.conversation_id = ?
		 ORDER BY ti.created_at`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query invocations: %w", err)
	}
	defer rows.Close()

	var invs []domain.ToolInvocation
	for rows.Next() {
		var inv domain.ToolInvocation
		if err := rows.Scan(&inv.ID, &inv.MessageID, &inv.ToolName, &inv.Input, &inv.Output,
			&inv.Status, &inv.Error, &inv.CallRef, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return invs, nil
}

// nullable maps "" onto NULL so partial unique indexes behave.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
