package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ramiro/assistant-core/internal/config"
	"github.com/ramiro/assistant-core/internal/conflict"
	"github.com/ramiro/assistant-core/internal/coordinator"
	"github.com/ramiro/assistant-core/internal/dispatch"
	"github.com/ramiro/assistant-core/internal/domain"
	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/logging"
	"github.com/ramiro/assistant-core/internal/metrics"
	"github.com/ramiro/assistant-core/internal/syncer"
	"github.com/ramiro/assistant-core/internal/telemetry"
	"github.com/ramiro/assistant-core/tools"
)

// Store is the persistence surface the service and its components depend on.
// *store.Store satisfies it.
type Store interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)
	SetThreadRef(ctx context.Context, conversationID, threadRef string) error
	CreateMessage(ctx context.Context, msg *domain.Message) error
	AttachExternalRef(ctx context.Context, messageID, externalRef string) error
	ExternalRefs(ctx context.Context, conversationID string) (map[string]struct{}, error)
	CreateInvocation(ctx context.Context, inv *domain.ToolInvocation) error
	FinishInvocation(ctx context.Context, id, status, output, errDetail string) error
}

// RunFailedError reports a run that ended in a failure-terminal state. It is
// surfaced as-is; the core never retries a terminal run.
type RunFailedError struct {
	Status execsvc.RunStatus
	Detail string
}

func (e *RunFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("run finished %s: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("run finished %s", e.Status)
}

// Service is the orchestration core's caller-facing API. Construct once per
// process and share; all methods are safe for concurrent use.
type Service struct {
	client     execsvc.Client
	store      Store
	coord      *coordinator.Coordinator
	dispatcher *dispatch.Dispatcher
	syncer     *syncer.Syncer
	resolver   *conflict.Resolver
	log        zerolog.Logger
	stats      *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires the core's components around one execution client and one store.
func New(client execsvc.Client, st Store, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		store:  st,
		coord: coordinator.New(client, coordinator.Config{
			PollInterval:  cfg.Run.PollInterval.Std(),
			Timeout:       cfg.Run.Timeout.Std(),
			MaxToolRounds: cfg.Run.MaxToolRounds,
		}, logging.Component(log, "coordinator")),
		dispatcher: dispatch.New(tools.Registry(), st, logging.Component(log, "dispatch")),
		syncer:     syncer.New(client, st, logging.Component(log, "sync")),
		resolver: conflict.New(client, conflict.Config{
			ConfirmInterval: cfg.Conflict.ConfirmInterval.Std(),
			ConfirmTimeout:  cfg.Conflict.ConfirmTimeout.Std(),
		}, logging.Component(log, "conflict")),
		log:   logging.Component(log, "chat"),
		stats: metrics.Default(),
		locks: make(map[string]*sync.Mutex),
	}
}

// StartConversation creates a conversation bound to an assistant. The remote
// thread is created lazily on the first message.
func (s *Service) StartConversation(ctx context.Context, assistantRef, participantRef string) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		AssistantRef:   assistantRef,
		ParticipantRef: participantRef,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// SendMessage appends a turn to the conversation, runs the assistant to a
// terminal state resolving tool rounds along the way, and returns the new
// messages mirrored from the remote transcript.
func (s *Service) SendMessage(ctx context.Context, conversationID, role, content string) ([]domain.Message, error) {
	ctx = telemetry.WithOpID(ctx, uuid.NewString())

	lock := s.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	s.stats.ActiveOperations.Inc()
	defer s.stats.ActiveOperations.Dec()

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	local := &domain.Message{
		ConversationID: conv.ID,
		Role:           role,
		Content:        content,
	}
	if err := s.store.CreateMessage(ctx, local); err != nil {
		return nil, err
	}

	if conv.ThreadRef == "" {
		threadRef, err := s.client.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.store.SetThreadRef(ctx, conv.ID, threadRef); err != nil {
			return nil, err
		}
		conv.ThreadRef = threadRef
		s.log.Info().Str("conversation_id", conv.ID).Str("thread_ref", threadRef).
			Msg("thread created")
	}

	msgRef, err := s.resolver.AppendWithRetry(ctx, conv.ThreadRef, role, content)
	if err != nil {
		return nil, err
	}
	if err := s.store.AttachExternalRef(ctx, local.ID, msgRef); err != nil {
		return nil, err
	}

	run, err := s.coord.StartRun(ctx, conv.ThreadRef, conv.AssistantRef)
	if err != nil {
		return nil, err
	}

	convCtx := domain.Context{ConversationID: conv.ID, ParticipantRef: conv.ParticipantRef}
	final, err := s.coord.Resolve(ctx, conv.ThreadRef, run, func(ctx context.Context, calls []execsvc.ToolCall) ([]execsvc.ToolOutput, error) {
		return s.dispatcher.ResolveToolCalls(ctx, calls, convCtx)
	})
	if err != nil {
		return nil, err
	}
	if final.Status != execsvc.RunCompleted {
		return nil, &RunFailedError{Status: final.Status, Detail: final.LastError}
	}

	return s.syncer.Sync(ctx, conv)
}

// SyncConversation mirrors the remote transcript without sending anything,
// for manual reconciliation.
func (s *Service) SyncConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	lock := s.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return s.syncer.Sync(ctx, conv)
}

// conversationLock returns the mutex serializing operations on one
// conversation, creating it on first use. Lock entries are never removed; the
// set of live conversations per process stays small.
func (s *Service) conversationLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	return lock
}
