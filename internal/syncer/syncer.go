// Package syncer mirrors the remote transcript into local message records.
//
// Sync is idempotent: the confirmed external ref set is the dedup key, so a
// second pass with no new remote activity creates nothing.
package syncer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ramiro/assistant-core/internal/domain"
	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/metrics"
	"github.com/ramiro/assistant-core/internal/telemetry"
)

// MessageStore is the slice of persistence the synchronizer needs.
type MessageStore interface {
	ExternalRefs(ctx context.Context, conversationID string) (map[string]struct{}, error)
	CreateMessage(ctx context.Context, msg *domain.Message) error
}

// Syncer reconciles remote messages into local rows.
type Syncer struct {
	client execsvc.Client
	store  MessageStore
	log    zerolog.Logger
	stats  *metrics.Metrics
}

func New(client execsvc.Client, store MessageStore, log zerolog.Logger) *Syncer {
	return &Syncer{client: client, store: store, log: log, stats: metrics.Default()}
}

// Sync fetches the remote transcript oldest first and creates local rows for
// messages not yet mirrored, in remote order, with assistant tool artifacts
// stripped from the content. It returns only the rows it created.
func (s *Syncer) Sync(ctx context.Context, conv *domain.Conversation) ([]domain.Message, error) {
	if conv.ThreadRef == "" {
		return nil, nil
	}

	remote, err := s.client.ListMessages(ctx, conv.ThreadRef)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ExternalRefs(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	var created []domain.Message
	for _, rm := range remote {
		if _, ok := existing[rm.ID]; ok {
			continue
		}
		msg := domain.Message{
			ConversationID: conv.ID,
			Role:           rm.Role,
			Content:        CleanContent(rm.Text()),
			ExternalRef:    rm.ID,
		}
		if err := s.store.CreateMessage(ctx, &msg); err != nil {
			return nil, fmt.Errorf("mirror message %s: %w", rm.ID, err)
		}
		created = append(created, msg)
	}

	s.stats.MessagesSynced.Add(float64(len(created)))
	telemetry.Emit(ctx, s.log, "sync_done", map[string]any{
		"conversation_id": conv.ID,
		"remote_total":    len(remote),
		"created":         len(created),
	})
	return created, nil
}
